package mq

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/signup/internal/account/usecase"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/messaging"
	"github.com/shandysiswandi/signup/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) SendCode(ctx context.Context, msg usecase.CodeDelivery) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "SendCode")
	defer span.End()

	body, err := json.Marshal(event.OTPIssuedMessage{
		EventID:   msg.EventID,
		AccountID: msg.AccountID,
		Username:  msg.Username,
		Email:     msg.Email,
		Code:      msg.Code,
		Purpose:   msg.Purpose,
		ExpiresAt: msg.ExpiresAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.AccountOTPIssuedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.Username),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
