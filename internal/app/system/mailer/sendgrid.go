// internal/app/system/mailer/sendgrid.go
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGridSender(cfg Config) *SendGridSender {
	return &SendGridSender{
		apiKey:   cfg.SendGridAPIKey,
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Email) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	from := sgmail.NewEmail(s.fromName, s.from)
	to := sgmail.NewEmail("", msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, msg.TextBody, msg.HTMLBody)

	client := sendgrid.NewSendClient(s.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
