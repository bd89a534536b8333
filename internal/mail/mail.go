// Package mail delivers outbound email through a pluggable provider.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crucial707/microblog/internal/config"
)

type Message struct {
	ID      string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers one message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Name() string { return "log" }

func (s LogSender) Send(_ context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail", "id", msg.ID, "to", strings.Join(msg.To, ","), "subject", msg.Subject, "body", msg.Text)
	return nil
}

// NewSender returns the provider selected by cfg.MailProvider.
func NewSender(cfg config.Config) (Sender, error) {
	switch cfg.MailProvider {
	case "", "log":
		return LogSender{}, nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("MAIL_PROVIDER=sendgrid requires SENDGRID_API_KEY")
		}
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.MailSender, cfg.MailSenderName), nil
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("MAIL_PROVIDER=resend requires RESEND_API_KEY")
		}
		return NewResendSender(cfg.ResendAPIKey, cfg.MailSender, cfg.MailSenderName), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
