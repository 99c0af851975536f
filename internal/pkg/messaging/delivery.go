package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/signup/internal/pkg/stacktrace"
)

// delivery is the Message every driver hands to handlers. ack and nack hold
// the broker-specific settle calls and may be nil.
type delivery struct {
	body    []byte
	key     []byte
	headers []Header
	id      string
	topic   string
	ts      time.Time

	ack  func(ctx context.Context) error
	nack func(ctx context.Context) error

	settled atomic.Bool
}

func (d *delivery) Body() []byte         { return d.body }
func (d *delivery) Key() []byte          { return d.key }
func (d *delivery) Headers() []Header    { return d.headers }
func (d *delivery) ID() string           { return d.id }
func (d *delivery) Topic() string        { return d.topic }
func (d *delivery) Timestamp() time.Time { return d.ts }

func (d *delivery) Ack(ctx context.Context) error {
	return d.settle(ctx, d.ack)
}

func (d *delivery) Nack(ctx context.Context) error {
	return d.settle(ctx, d.nack)
}

func (d *delivery) settle(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.settled.Swap(true) || fn == nil {
		return nil
	}
	return fn(ctx)
}

// dispatch runs handler with panic recovery and, when autoAck is set, settles
// the message from the handler result unless the handler already did.
func dispatch(ctx context.Context, kind string, handler Handler, d *delivery, autoAck bool) error {
	herr := runHandler(ctx, kind, handler, d)

	if !autoAck || d.settled.Load() {
		return herr
	}

	if herr != nil {
		return d.Nack(ctx)
	}
	return d.Ack(ctx)
}

func runHandler(ctx context.Context, kind string, handler Handler, d *delivery) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "topic", d.topic, "panic", rvr, stacktrace.Attr())
			err = fmt.Errorf("messaging: panic in %s handler: %v", kind, rvr)
		}
	}()

	return handler(ctx, d)
}
