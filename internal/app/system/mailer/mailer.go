// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Email is one outbound message with plain-text and HTML alternatives.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers a single message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Email) error
}

// Providers.
const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
	ProviderLog      = "log"
)

// Config selects and configures the delivery transport.
type Config struct {
	Provider string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	SendGridAPIKey string

	From     string
	FromName string
}

// ErrNoRecipient is returned for a message without a To address.
var ErrNoRecipient = errors.New("mailer: message has no recipient")

// New returns the Sender for cfg.Provider. An empty provider logs instead
// of sending.
func New(cfg Config, logger *zap.Logger) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("mailer: smtp provider requires a host")
		}
		return NewSMTPSender(cfg), nil
	case ProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("mailer: sendgrid provider requires an API key")
		}
		return NewSendGridSender(cfg), nil
	case ProviderLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("mailer: unknown provider %q", cfg.Provider)
	}
}

// LogSender writes messages to the log instead of delivering them.
// Bodies are not logged because credential mail carries a password.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{log: logger}
}

func (s *LogSender) Send(_ context.Context, msg Email) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	s.log.Info("email (log provider, not delivered)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("text_bytes", len(msg.TextBody)),
		zap.Int("html_bytes", len(msg.HTMLBody)))
	return nil
}
