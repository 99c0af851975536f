package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrClosed is returned by operations on a closed client.
	ErrClosed = errors.New("messaging: client closed")
	// ErrDestinationRequired is returned when the topic or subject is empty.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrHandlerRequired is returned when Consume gets a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
)

// Messaging publishes and consumes messages.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic or subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a source. Consume blocks until ctx is done,
// the client is closed or the broker connection fails.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message. With WithAutoAck(true) a nil return
// acks the message and an error nacks it.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to publish.
type OutgoingMessage struct {
	Body []byte
	// Key selects the Kafka partition.
	Key     []byte
	Headers []Header
	// OrderingKey is used by Google Pub/Sub.
	OrderingKey string
}

// Header is a key/value pair carried alongside the body.
type Header struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// HeaderValue returns the first header named key, or "".
func HeaderValue(headers []Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// PublishResult carries what the broker reports about an accepted message.
// Fields a broker does not provide stay zero.
type PublishResult struct {
	MessageID string
	Topic     string
	Partition int
	Offset    int64
}

// Message is a received message.
type Message interface {
	Body() []byte
	Key() []byte
	Headers() []Header
	ID() string
	Topic() string
	Timestamp() time.Time
	// Ack confirms processing. Only the first Ack or Nack has an effect.
	Ack(ctx context.Context) error
	// Nack asks for redelivery where the broker supports it.
	Nack(ctx context.Context) error
}
