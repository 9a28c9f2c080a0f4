// Package email provides ports.NotificationSender implementations: a
// Mailgun-backed sender for real delivery and a log-only sender for local
// development.
package email

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
)

// Config holds the settings for outbound email.
type Config struct {
	// Domain and APIKey identify the Mailgun account. When either is empty
	// the caller should fall back to the log sender.
	Domain string
	APIKey string
	// From is the sender address, e.g. "Accounts <no-reply@example.com>".
	From string
	// BaseURL is the public site prefix embedded in confirmation and
	// recovery links.
	BaseURL string
}

// MailgunSender dispatches confirmation and recovery emails via Mailgun.
type MailgunSender struct {
	mg  *mailgun.MailgunImpl
	cfg Config
}

func NewMailgunSender(cfg Config) *MailgunSender {
	return &MailgunSender{mg: mailgun.NewMailgun(cfg.Domain, cfg.APIKey), cfg: cfg}
}

func (s *MailgunSender) SendConfirmationEmail(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(
		"Thanks for registering!\n\nTo finish registration, follow the link:\n%s/confirm-email?code=%s\n",
		s.cfg.BaseURL, code,
	)
	return s.send(ctx, email, "Confirm your registration", body)
}

func (s *MailgunSender) SendRecoveryEmail(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nTo set a new password, follow the link:\n%s/password-recovery?recoveryCode=%s\n\nIf you did not request this, ignore this email.\n",
		s.cfg.BaseURL, code,
	)
	return s.send(ctx, email, "Password recovery", body)
}

func (s *MailgunSender) send(ctx context.Context, to, subject, body string) error {
	msg := s.mg.NewMessage(s.cfg.From, subject, body, to)
	if _, _, err := s.mg.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}
