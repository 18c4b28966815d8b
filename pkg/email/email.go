package email

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotConfigured = errors.New("email: no provider configured")

// Message is a single HTML e-mail to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message or reports why the provider did not accept it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Address is the From identity used by every sender.
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// ProviderError is returned when the provider answered with a non-2xx status.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("email: %s rejected message: status %d: %s", e.Provider, e.StatusCode, e.Body)
}
