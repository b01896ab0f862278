package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teris-io/shortid"

	"github.com/voxeterna/blog-api/internal/google"
	"github.com/voxeterna/blog-api/internal/hash"
	"github.com/voxeterna/blog-api/internal/logging"
	"github.com/voxeterna/blog-api/internal/mailer"
	"github.com/voxeterna/blog-api/internal/models"
	"github.com/voxeterna/blog-api/internal/mykafka"
	"github.com/voxeterna/blog-api/internal/repo"
	"github.com/voxeterna/blog-api/internal/tokens"
)

var (
	ErrEmailTaken         = errors.New("email is taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrCredentialMismatch = errors.New("email and password did not match")
	ErrResetLinkMismatch  = errors.New("reset link no longer outstanding")
	ErrOAuthFailed        = errors.New("google login failed")
	ErrMail               = errors.New("mail delivery failed")
)

type AuthService struct {
	Repo     *repo.Store
	Tokens   *tokens.Codec
	Mailer   mailer.Mailer
	Provider google.IdentityProvider
	Producer *mykafka.Producer

	ClientURL string
	EmailFrom string
}

// Session is what a successful signin hands back: the bearer token, its
// expiry for the cookie, and the sanitized user record.
type Session struct {
	Token   string
	Expires time.Time
	User    *models.User
}

// PreSignup checks the email is free, then mails an activation link carrying
// the pending registration. No user record is created yet.
func (s *AuthService) PreSignup(ctx context.Context, name, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.pre_signup")

	_, err := s.Repo.UserByEmail(ctx, email)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	token, err := s.Tokens.IssueActivation(name, email, password)
	if err != nil {
		return err
	}

	if err := s.Mailer.Send(ctx, mailer.ActivationEmail(s.EmailFrom, email, s.ClientURL, token)); err != nil {
		l.Error("activation_mail_failed", "error", err)
		return fmt.Errorf("%w: %v", ErrMail, err)
	}
	return nil
}

// Signup redeems an activation token and creates the account. Two valid
// tokens for the same email can race here; the store's unique index decides
// and the second save surfaces the constraint error.
func (s *AuthService) Signup(ctx context.Context, token string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	if _, err := s.Tokens.VerifyActivation(token); err != nil {
		return nil, err
	}
	claims, err := tokens.DecodeActivation(token)
	if err != nil {
		return nil, err
	}

	username, err := shortid.Generate()
	if err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(claims.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         claims.Name,
		Email:        claims.Email,
		Username:     username,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		Profile:      fmt.Sprintf("%s/profile/%s", s.ClientURL, username),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		l.Warn("signup_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})
	return user, nil
}

// Signin exchanges credentials for a session token. It distinguishes an
// unknown email from a wrong password; callers surface both as-is.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signin")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("signin_failed", "reason", "credential mismatch")
		return nil, ErrCredentialMismatch
	}

	return s.openSession(ctx, user)
}

// ForgotPassword mints a reset token, persists it as the user's outstanding
// reset challenge, and only then mails the link. A persistence failure
// aborts before any email goes out; a second call overwrites the first
// challenge and invalidates its link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := s.Tokens.IssueReset(user.ID)
	if err != nil {
		return err
	}

	if err := s.Repo.SetResetLink(ctx, user.ID, token); err != nil {
		l.Error("reset_link_persist_failed", "error", err)
		return err
	}

	if err := s.Mailer.Send(ctx, mailer.ResetEmail(s.EmailFrom, user.Email, s.ClientURL, token)); err != nil {
		l.Error("reset_mail_failed", "error", err)
		return fmt.Errorf("%w: %v", ErrMail, err)
	}
	return nil
}

// ResetPassword redeems a reset link. The user is found by stored-link
// equality, not by the token subject alone, so a redeemed or superseded link
// fails even while its signature is still valid. The challenge is cleared
// only when the password save succeeds.
func (s *AuthService) ResetPassword(ctx context.Context, link, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if _, err := s.Tokens.VerifyReset(link); err != nil {
		return err
	}

	user, err := s.Repo.UserByResetLink(ctx, link)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("reset_failed", "reason", "link not outstanding")
			return ErrResetLinkMismatch
		}
		return err
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, user.ID, pwHash)
}

// GoogleLogin verifies the provider assertion and signs the user in,
// creating the account on first login. The generated credential exists only
// to satisfy the record shape; it is never announced for password signin.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.google_login")

	identity, err := s.Provider.Verify(ctx, idToken)
	if err != nil {
		l.Warn("google_verify_failed", "error", err)
		return nil, ErrOAuthFailed
	}
	if !identity.EmailVerified {
		return nil, ErrOAuthFailed
	}

	user, err := s.Repo.UserByEmail(ctx, identity.Email)
	if err == nil {
		return s.openSession(ctx, user)
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	username, err := shortid.Generate()
	if err != nil {
		return nil, err
	}
	pwHash, err := hash.HashPassword(identity.AssertionID + string(s.Tokens.SessionSecret))
	if err != nil {
		return nil, err
	}

	user = &models.User{
		Name:         identity.Name,
		Email:        identity.Email,
		Username:     username,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		Profile:      fmt.Sprintf("%s/profile/%s", s.ClientURL, username),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		l.Warn("google_signup_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
		"provider": "google",
	})
	return s.openSession(ctx, user)
}

func (s *AuthService) openSession(ctx context.Context, user *models.User) (*Session, error) {
	token, exp, err := s.Tokens.IssueSession(user.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":     "user_signed_in",
		"userID":   user.ID,
		"username": user.Username,
	})
	return &Session{Token: token, Expires: exp, User: user}, nil
}

// publish is best-effort: losing an event never fails the request.
func (s *AuthService) publish(ctx context.Context, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Producer.PublishEvent(pubCtx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
