package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"go-recruiter-backend/config"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendGrid struct {
	resp *rest.Response
	err  error
	got  *mail.SGMailV3
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.got = m
	return f.resp, f.err
}

func TestSendGridSender(t *testing.T) {
	from := Address{Name: "Recruitment Team", Email: "recruiter@example.com"}
	msg := Message{To: "jane@example.com", Subject: "Application Update: Go Engineer", HTML: "<p>hi</p>"}

	t.Run("202 is success", func(t *testing.T) {
		fake := &fakeSendGrid{resp: &rest.Response{StatusCode: 202}}
		s := &SendGridSender{client: fake, from: from}

		require.NoError(t, s.Send(context.Background(), msg))
		require.NotNil(t, fake.got)
		assert.Equal(t, "Application Update: Go Engineer", fake.got.Subject)
		assert.Equal(t, "recruiter@example.com", fake.got.From.Address)
	})

	t.Run("non-2xx status is a provider error", func(t *testing.T) {
		fake := &fakeSendGrid{resp: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
		s := &SendGridSender{client: fake, from: from}

		err := s.Send(context.Background(), msg)
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 401, perr.StatusCode)
	})

	t.Run("transport error is returned", func(t *testing.T) {
		fake := &fakeSendGrid{err: errors.New("dial tcp: timeout")}
		s := &SendGridSender{client: fake, from: from}
		assert.Error(t, s.Send(context.Background(), msg))
	})
}

func TestSMTPSender(t *testing.T) {
	from := Address{Name: "Recruitment Team", Email: "recruiter@example.com"}

	t.Run("unconfigured sender refuses", func(t *testing.T) {
		s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com"}, from)
		assert.ErrorIs(t, s.Send(context.Background(), Message{To: "a@b.c"}), ErrNotConfigured)
	})

	t.Run("builds an HTML MIME message", func(t *testing.T) {
		s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: "587", Username: "u", Password: "p"}, from)
		var gotAddr string
		var gotMsg []byte
		s.sendMail = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
			gotAddr = addr
			gotMsg = msg
			assert.Equal(t, []string{"jane@example.com"}, to)
			return nil
		}

		err := s.Send(context.Background(), Message{To: "jane@example.com", Subject: "Hello", HTML: "<b>x</b>"})
		require.NoError(t, err)
		assert.Equal(t, "smtp.example.com:587", gotAddr)
		assert.True(t, strings.Contains(string(gotMsg), "Content-Type: text/html; charset=UTF-8"))
		assert.True(t, strings.HasSuffix(string(gotMsg), "<b>x</b>"))
	})
}

func TestFromConfig(t *testing.T) {
	t.Run("Should prefer SendGrid", func(t *testing.T) {
		sender := FromConfig(&config.Config{SendGridAPIKey: "SG.key", SMTPHost: "smtp", SMTPUsername: "u", SMTPPassword: "p"})
		assert.IsType(t, &SendGridSender{}, sender)
	})

	t.Run("Should fall back to SMTP", func(t *testing.T) {
		sender := FromConfig(&config.Config{SMTPHost: "smtp", SMTPUsername: "u", SMTPPassword: "p"})
		assert.IsType(t, &SMTPSender{}, sender)
	})

	t.Run("Should return nil without credentials", func(t *testing.T) {
		assert.Nil(t, FromConfig(&config.Config{SMTPHost: "smtp"}))
	})
}
