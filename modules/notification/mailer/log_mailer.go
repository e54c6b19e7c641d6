package mailer

import (
	"context"

	"book-my-session/core/logger"
)

// LogMailer records messages instead of sending them. Used when mail is disabled.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logger.Info("LogMailer:Send",
		"to", msg.To.Address,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	return nil
}
