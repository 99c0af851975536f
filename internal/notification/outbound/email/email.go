package email

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/signup/internal/notification/entity"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/mail"
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// Send hands a rendered email to the transport. The sender address comes from
// the transport default.
func (m *Mail) Send(ctx context.Context, email entity.Email) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "Send",
		trace.WithAttributes(attribute.String("mail.subject", email.Subject)))
	defer span.End()

	err := m.client.Send(ctx, mail.Message{
		To:       []string{email.To},
		Subject:  email.Subject,
		TextBody: email.TextBody,
		HTMLBody: email.HTMLBody,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
