package email

import "go-recruiter-backend/config"

// FromConfig prefers SendGrid and falls back to the SMTP relay. It returns
// nil when neither provider has credentials.
func FromConfig(cfg *config.Config) Sender {
	from := Address{Name: cfg.EmailFromName, Email: cfg.EmailFrom}
	switch {
	case cfg.SendGridAPIKey != "":
		return NewSendGridSender(cfg.SendGridAPIKey, from)
	case cfg.EmailConfigured():
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}, from)
	}
	return nil
}
