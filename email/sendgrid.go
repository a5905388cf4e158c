package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendEndpoint = "/v3/mail/send"

type SendGridSender struct {
	apiKey string
	host   string
	from   *mail.Email
}

// NewSendGridSender returns a sender using the v3 mail API. An empty host
// means the public SendGrid API.
func NewSendGridSender(apiKey, host, fromEmail, fromName string) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	if fromEmail == "" {
		return nil, ErrNoFromAddress
	}

	return &SendGridSender{
		apiKey: apiKey,
		host:   host,
		from:   mail.NewEmail(fromName, fromEmail),
	}, nil
}

func (s *SendGridSender) Send(ctx context.Context, m *Message) error {
	msg := mail.NewV3Mail()
	msg.SetFrom(s.from)
	msg.Subject = m.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(m.ToName, m.To))
	msg.AddPersonalizations(p)

	// text/plain has to come before text/html
	if m.Text != "" {
		msg.AddContent(mail.NewContent("text/plain", m.Text))
	}
	if m.HTML != "" {
		msg.AddContent(mail.NewContent("text/html", m.HTML))
	}

	// The request carries the body so it can't be shared between sends
	req := sendgrid.GetRequest(s.apiKey, sendEndpoint, s.host)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(msg)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed, %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d, %s", ErrProviderRejected, resp.StatusCode, resp.Body)
	}

	return nil
}
