package email

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"
)

// SMTPSender is the fallback provider for setups without SendGrid
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) (*SMTPSender, error) {
	if fromEmail == "" {
		return nil, ErrNoFromAddress
	}

	if host == "" {
		return nil, errors.New("no smtp host provided")
	}

	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   fromEmail,
		name:   fromName,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, m *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.from, s.name)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)

	switch {
	case m.Text != "" && m.HTML != "":
		msg.SetBody("text/plain", m.Text)
		msg.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		msg.SetBody("text/html", m.HTML)
	default:
		msg.SetBody("text/plain", m.Text)
	}

	return s.dialer.DialAndSend(msg)
}
