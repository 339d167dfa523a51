package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	templates "github.com/umt-lostfound/lostfound-api/templates/html"
)

const senderName = "UMT Lost & Found"

// SendgridMailer emails notifications through SendGrid
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendgridMailer returns a mailer sending from the given address
func NewSendgridMailer(apiKey, from string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(senderName, from),
	}
}

// Send delivers one plain notification email rendered into the generic template
func (m *SendgridMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), body, templates.RenderGenericEmail(subject, body))
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected email with status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
