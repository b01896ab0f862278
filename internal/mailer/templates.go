package mailer

import "fmt"

func ActivationEmail(from, to, clientURL, token string) Email {
	return Email{
		From:    from,
		To:      to,
		Subject: "Account Activation link",
		HTML: fmt.Sprintf(`
			<p>Please use the following link to activate your account:</p>
			<p>%s/auth/account/activate/%s</p>
			<hr />
			<p>This email may contain sensitive information.</p>
			<p>%s</p>
		`, clientURL, token, clientURL),
	}
}

func ResetEmail(from, to, clientURL, token string) Email {
	return Email{
		From:    from,
		To:      to,
		Subject: "Password reset link",
		HTML: fmt.Sprintf(`
			<p>Please use the following link to reset your password:</p>
			<p>%s/auth/password/reset/%s</p>
			<hr />
			<p>This email may contain sensitive information.</p>
			<p>%s</p>
		`, clientURL, token, clientURL),
	}
}

func ContactEmail(appName, to, senderName, senderEmail, message string) Email {
	return Email{
		From:    senderEmail,
		To:      to,
		Subject: fmt.Sprintf("Contact form - %s", appName),
		Text: fmt.Sprintf("Email received from contact form \n Sender name: %s \n Sender email: %s \n Sender message: %s",
			senderName, senderEmail, message),
		HTML: fmt.Sprintf(`
			<h4>Email received from contact form:</h4>
			<p>Sender Name: %s</p>
			<p>Sender Email: %s</p>
			<p>Sender Message: %s</p>
			<hr />
		`, senderName, senderEmail, message),
	}
}

func AuthorContactEmail(appName, authorEmail, senderName, senderEmail, message string) Email {
	return Email{
		From:    senderEmail,
		To:      authorEmail,
		Subject: fmt.Sprintf("Someone messaged you from %s", appName),
		Text: fmt.Sprintf("Email received from contact form \n Sender name: %s \n Sender email: %s \n Sender message: %s",
			senderName, senderEmail, message),
		HTML: fmt.Sprintf(`
			<h4>Message received from:</h4>
			<p>Name: %s</p>
			<p>Email: %s</p>
			<p>Message: %s</p>
			<hr />
		`, senderName, senderEmail, message),
	}
}
