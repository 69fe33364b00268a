// Package mailer delivers transactional email for the contacts service.
package mailer

import (
	"context"
	"log/slog"
)

// Sender delivers a confirmation email containing the given link.
type Sender interface {
	SendConfirmation(ctx context.Context, email, confirmURL string) error
}

// LogSender writes confirmation links to the log instead of sending mail.
// It stands in for a real provider in development and tests; the link in the
// log output is clickable and works against a locally running instance.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-backed sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendConfirmation logs the confirmation link for the address.
func (s *LogSender) SendConfirmation(ctx context.Context, email, confirmURL string) error {
	s.logger.InfoContext(ctx, "confirmation email",
		slog.String("to", email),
		slog.String("confirm_url", confirmURL),
	)
	return nil
}
