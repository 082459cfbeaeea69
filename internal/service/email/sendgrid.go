package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Category attached to every message, for filtering in SendGrid stats.
const sendGridCategory = "chargehub"

type SendGridProvider struct {
	from   *mail.Email
	client *sendgrid.Client
}

func NewSendGridProvider(apiKey, fromEmail, fromName string) *SendGridProvider {
	return &SendGridProvider{
		from:   mail.NewEmail(fromName, fromEmail),
		client: sendgrid.NewSendClient(apiKey),
	}
}

func (p *SendGridProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	response, err := p.client.SendWithContext(ctx, p.message(to, subject, body, isHTML))
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (p *SendGridProvider) message(to, subject, body string, isHTML bool) *mail.SGMailV3 {
	plain, html := body, ""
	if isHTML {
		plain, html = "", body
	}
	m := mail.NewSingleEmail(p.from, subject, mail.NewEmail("", to), plain, html)
	m.AddCategories(sendGridCategory)
	return m
}
