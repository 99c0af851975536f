package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/signup/internal/account/usecase"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/messaging"
	"github.com/shandysiswandi/signup/internal/shared/event"
)

type fakePublisher struct {
	destination string
	msg         messaging.OutgoingMessage
	err         error
}

func (f *fakePublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	f.destination = destination
	f.msg = msg
	return messaging.PublishResult{Topic: destination}, f.err
}

func TestMessaging_SendCode(t *testing.T) {
	// Arrange
	pub := &fakePublisher{}
	m := NewMessaging(pub, instrument.NewNoop())
	expires := time.Date(2025, 3, 14, 10, 10, 0, 0, time.UTC)
	ctx := instrument.SetCorrelationID(context.Background(), "corr-42")

	// Act
	err := m.SendCode(ctx, usecase.CodeDelivery{
		EventID:   "evt-1",
		AccountID: 7,
		Username:  "ayu_w",
		Email:     "ayu@example.com",
		Code:      "482913",
		Purpose:   event.OTPPurposeJoin,
		ExpiresAt: expires,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, event.AccountOTPIssuedDestination, pub.destination)
	assert.Equal(t, "corr-42", messaging.HeaderValue(pub.msg.Headers, "cID"))
	assert.Equal(t, "ayu_w", string(pub.msg.Key))

	var body event.OTPIssuedMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &body))
	assert.Equal(t, event.OTPIssuedMessage{
		EventID:   "evt-1",
		AccountID: 7,
		Username:  "ayu_w",
		Email:     "ayu@example.com",
		Code:      "482913",
		Purpose:   "join",
		ExpiresAt: expires,
	}, body)
}

func TestMessaging_SendCodePublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker unavailable")}

	err := NewMessaging(pub, instrument.NewNoop()).SendCode(context.Background(), usecase.CodeDelivery{EventID: "e"})

	assert.EqualError(t, err, "broker unavailable")
}

func TestMessaging_SendCodeClosedBroker(t *testing.T) {
	broker := messaging.NewMemory(messaging.MemoryConfig{})
	require.NoError(t, broker.Close())

	err := NewMessaging(broker, instrument.NewNoop()).SendCode(context.Background(), usecase.CodeDelivery{EventID: "e"})

	assert.ErrorIs(t, err, messaging.ErrClosed)
}
