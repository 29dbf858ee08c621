package email

import (
	"context"
	"fmt"
	netmail "net/mail"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender implements Sender using the SendGrid v3 API. Each send
// is an independent HTTP call, so it is wrapped by AsBatchSender for
// broadcast use.
type SendGridSender struct {
	client *sendgrid.Client
}

// NewSendGridSender creates a new SendGridSender.
func NewSendGridSender(apiKey string) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid: API key is required")
	}
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey)}, nil
}

// Send sends an email via the SendGrid API.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	fromName, fromAddr := splitAddress(msg.From)
	m := mail.NewSingleEmail(
		mail.NewEmail(fromName, fromAddr),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.TextBody,
		msg.HTMLBody,
	)
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: send rejected with status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// splitAddress breaks a formatted From header into display name and
// address. A bare address comes back with an empty name.
func splitAddress(from string) (name, addr string) {
	parsed, err := netmail.ParseAddress(from)
	if err != nil {
		return "", from
	}
	return parsed.Name, parsed.Address
}
