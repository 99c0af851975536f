package inbound

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/signup/internal/pkg/config"
	"github.com/shandysiswandi/signup/internal/pkg/goroutine"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/messaging"
	"github.com/shandysiswandi/signup/internal/pkg/uid"
	"github.com/shandysiswandi/signup/internal/shared/event"
)

// RegisterMQConsumer starts every consumer listed in
// modules.notification.consumer_names. Each runs until ctx is done.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	handler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	concurrency := cfg.GetInt("modules.notification.consumer_concurrency")
	if concurrency <= 0 {
		concurrency = 10
	}

	consumers := []struct {
		name    string
		topic   string
		handler messaging.Handler
	}{
		{
			name:    event.AccountOTPIssuedConsumerNotification,
			topic:   event.AccountOTPIssuedDestination,
			handler: handler.OTPIssuedNotification,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enabled, consumer.name) {
			continue
		}

		started := routine.Go(ctx, func(ctx context.Context) error {
			slog.InfoContext(ctx, "running consumer", "consumer", consumer.name, "topic", consumer.topic)
			// The consumer name doubles as the nsq channel, nats queue group,
			// kafka group and pubsub subscription.
			err := messenger.Consume(ctx,
				consumer.topic,
				consumer.handler,
				messaging.WithChannel(consumer.name),
				messaging.WithQueueGroup(consumer.name),
				messaging.WithGroup(consumer.name),
				messaging.WithSubscription(consumer.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
			)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		if !started {
			slog.WarnContext(ctx, "consumer not started", "consumer", consumer.name)
		}
	}
}
