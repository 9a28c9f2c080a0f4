package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes emails to the log instead of delivering them. Used when
// Mailgun credentials are not configured (local development, CI).
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendConfirmationEmail(_ context.Context, email, code string) error {
	s.log.Info().Str("email", email).Str("code", code).Msg("confirmation email (log only)")
	return nil
}

func (s *LogSender) SendRecoveryEmail(_ context.Context, email, code string) error {
	s.log.Info().Str("email", email).Str("code", code).Msg("recovery email (log only)")
	return nil
}
