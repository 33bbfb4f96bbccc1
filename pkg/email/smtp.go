package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	config   SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config, sendMail: smtp.SendMail}
}

// buildMessage constructs the raw message with CRLF line endings.
func (m *SMTPMailer) buildMessage(msg Message) []byte {
	return []byte(strings.Join([]string{
		"To: " + msg.To,
		"From: " + m.config.Sender,
		"Subject: " + msg.Subject,
		"MIME-version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		msg.Body,
	}, "\r\n"))
}

// Send implements Mailer. net/smtp has no context support, so ctx is only
// checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// servers without authentication get a nil Auth
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	if err := m.sendMail(addr, auth, m.config.Sender, []string{msg.To}, m.buildMessage(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
