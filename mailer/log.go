package mailer

import (
	"context"
	"log/slog"
)

// LogSender drops messages after logging them. Used when no transport is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.InfoContext(ctx, "no mail transport configured, skipping email",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
