package email

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ConsoleMailer writes messages to the log instead of sending them. Used in development.
type ConsoleMailer struct{}

func NewConsoleMailer() *ConsoleMailer { return &ConsoleMailer{} }

func (ConsoleMailer) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("email (console backend)")
	return nil
}
