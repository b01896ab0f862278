package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"

	"github.com/voxeterna/blog-api/internal/logging"
)

type Email struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends transactional email. Sends are awaited; a failed send is
// returned to the caller instead of being dropped.
type Mailer interface {
	Send(ctx context.Context, m Email) error
}

type SMTP struct {
	host     string
	port     int
	username string
	password string
}

func NewSMTP(host string, port int, username, password string) *SMTP {
	return &SMTP{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

func (s *SMTP) Send(ctx context.Context, m Email) error {
	mail := mailyak.New(fmt.Sprintf("%s:%d", s.host, s.port),
		smtp.PlainAuth("", s.username, s.password, s.host))

	mail.To(m.To)
	mail.From(m.From)
	mail.Subject(m.Subject)
	if m.Text != "" {
		mail.Plain().Set(m.Text)
	}
	if m.HTML != "" {
		mail.HTML().Set(m.HTML)
	}

	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail send to %s: %w", m.To, err)
		}
	}

	logging.FromContext(ctx).Info("mail sent", "to", m.To, "subject", m.Subject)
	return nil
}
