package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages. Send returns an error only when delivery failed.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNotConfigured is returned by New when the selected backend lacks settings.
var ErrNotConfigured = errors.New("mail backend is not configured")

const (
	BackendSMTP     = "smtp"
	BackendSendGrid = "sendgrid"
	BackendConsole  = "console"
)

// Settings selects and configures a backend.
type Settings struct {
	Backend        string
	From           string
	SMTP           SMTPConfig
	SendGridAPIKey string
}

// New returns the Mailer for s.Backend.
func New(s Settings) (Mailer, error) {
	switch strings.ToLower(s.Backend) {
	case BackendSMTP:
		if s.SMTP.Host == "" || s.SMTP.Port == 0 {
			return nil, fmt.Errorf("%w: SMTP_HOST and SMTP_PORT must be set", ErrNotConfigured)
		}
		cfg := s.SMTP
		if cfg.Sender == "" {
			cfg.Sender = s.From
		}
		return NewSMTPMailer(cfg), nil
	case BackendSendGrid:
		if s.SendGridAPIKey == "" {
			return nil, fmt.Errorf("%w: SENDGRID_API_KEY must be set", ErrNotConfigured)
		}
		return NewSendGridMailer(s.SendGridAPIKey, s.From), nil
	case BackendConsole, "":
		return NewConsoleMailer(), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", s.Backend)
	}
}
