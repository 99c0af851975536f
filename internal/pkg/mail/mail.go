package mail

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrNoRecipients is returned when To is empty.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrNoSender is returned when both Message.From and the configured default From are empty.
	ErrNoSender = errors.New("mail: no sender provided")
	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("mail: unknown driver")
)

// Message is an email payload. When both bodies are set the message is sent
// as multipart/alternative.
type Message struct {
	// From overrides the configured default sender.
	From     string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures a Mail implementation.
type Config struct {
	// Driver is "smtp" or "log".
	Driver string
	SMTP   SMTPConfig
}

// New builds the Mail implementation named by cfg.Driver.
func New(cfg Config) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "smtp":
		return NewSMTP(cfg.SMTP)
	case "", "log":
		return NewLog(cfg.SMTP.From), nil
	default:
		return nil, ErrUnknownDriver
	}
}

func resolveSender(msg Message, fallback string) (string, error) {
	if len(msg.To) == 0 {
		return "", ErrNoRecipients
	}
	from := msg.From
	if from == "" {
		from = fallback
	}
	if from == "" {
		return "", ErrNoSender
	}
	return from, nil
}
