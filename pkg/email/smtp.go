package email

import (
	"context"
	"fmt"
	"net/smtp"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender handles sending emails via an SMTP relay (Brevo by default)
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     Address
	sendMail sendMailFunc
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

func NewSMTPSender(cfg SMTPConfig, from Address) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

// IsConfigured checks if the sender has valid SMTP configuration
func (s *SMTPSender) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.from.String(),
		msg.To,
		msg.Subject,
		msg.HTML,
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.sendMail(addr, auth, s.from.Email, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("email: smtp: %w", err)
	}
	return nil
}
