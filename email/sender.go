// Package email sends the lead notifications. Templates are read from disk
// on every send and rendered with Handlebars semantics.
package email

import (
	"context"
	"errors"
)

var (
	ErrNoAPIKey         = errors.New("no SendGrid API key provided")
	ErrNoFromAddress    = errors.New("no sender address provided")
	ErrNoAdminAddress   = errors.New("no admin address provided")
	ErrProviderRejected = errors.New("email provider rejected the message")
)

// Message is built per send and never stored
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, m *Message) error
}
