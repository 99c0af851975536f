package mail

import (
	"context"
	"log/slog"
)

// Log is a Mail that writes messages to the default slog logger.
type Log struct {
	defaultFrom string
}

// NewLog returns a Log mailer using from as the default sender.
func NewLog(from string) *Log {
	if from == "" {
		from = "no-reply@localhost"
	}
	return &Log{defaultFrom: from}
}

// Send logs msg at info level.
func (l *Log) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from, err := resolveSender(msg, l.defaultFrom)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "mail delivered to log",
		"from", from,
		"to", msg.To,
		"subject", msg.Subject,
		"text_body", msg.TextBody,
	)
	return nil
}

// Close implements io.Closer.
func (l *Log) Close() error {
	return nil
}
