package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendgridEndpoint = "/v3/mail/send"

// SendGridSender builds a client per message: sendgrid.Client stores the
// request body on itself and cannot be shared between workers.
type SendGridSender struct {
	apiKey string
	host   string
	from   *sgmail.Email
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return newSendGridSenderWithHost(apiKey, "", fromEmail, fromName)
}

// newSendGridSenderWithHost points the client at another API host; "" is the default.
func newSendGridSenderWithHost(apiKey, host, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		apiKey: apiKey,
		host:   host,
		from:   sgmail.NewEmail(fromName, fromEmail),
	}
}

func (s *SendGridSender) Name() string { return "sendgrid" }

func (s *SendGridSender) client() *sendgrid.Client {
	req := sendgrid.GetRequest(s.apiKey, sendgridEndpoint, s.host)
	req.Method = "POST"
	return &sendgrid.Client{Request: req}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}
	m.AddPersonalizations(p)

	if msg.Text != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	resp, err := s.client().SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
