package messaging

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const (
	defaultMemoryBuffer      = 1024
	defaultMemoryMaxAttempts = 5
)

// MemoryConfig configures the in-process broker.
type MemoryConfig struct {
	// Buffer is the queue capacity per topic and group.
	Buffer int
	// MaxAttempts caps redeliveries of a nacked message.
	MaxAttempts int
}

// Memory is an in-process broker. Each (topic, group) pair is one queue:
// consumers sharing a group compete for messages and every group receives
// its own copy. Messages published to a topic with no consumers are dropped.
type Memory struct {
	buffer      int
	maxAttempts int

	mu     sync.Mutex
	queues map[string]map[string]chan *memoryItem

	seq       atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
}

type memoryItem struct {
	id       string
	topic    string
	msg      OutgoingMessage
	ts       time.Time
	attempts int
}

// NewMemory returns an empty in-process broker.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultMemoryBuffer
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMemoryMaxAttempts
	}

	return &Memory{
		buffer:      cfg.Buffer,
		maxAttempts: cfg.MaxAttempts,
		queues:      map[string]map[string]chan *memoryItem{},
		done:        make(chan struct{}),
	}
}

// Close stops every running Consume call.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}

func (m *Memory) isClosed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// Publish enqueues msg for every group consuming destination.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	if m.isClosed() {
		return PublishResult{}, ErrClosed
	}

	seq := m.seq.Inc()
	id := strconv.FormatInt(seq, 10)
	now := time.Now()

	for _, q := range m.groupQueues(destination) {
		item := &memoryItem{id: id, topic: destination, msg: msg, ts: now}
		select {
		case q <- item:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		case <-m.done:
			return PublishResult{}, ErrClosed
		}
	}

	return PublishResult{MessageID: id, Topic: destination, Offset: seq}, nil
}

func (m *Memory) groupQueues(topic string) []chan *memoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]chan *memoryItem, 0, len(m.queues[topic]))
	for _, q := range m.queues[topic] {
		out = append(out, q)
	}
	return out
}

func (m *Memory) queue(topic, group string) chan *memoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups, ok := m.queues[topic]
	if !ok {
		groups = map[string]chan *memoryItem{}
		m.queues[topic] = groups
	}
	q, ok := groups[group]
	if !ok {
		q = make(chan *memoryItem, m.buffer)
		groups[group] = q
	}
	return q
}

// Consume processes messages of source until ctx is done or the broker is
// closed. The queue exists from the moment Consume is called.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	if m.isClosed() {
		return ErrClosed
	}

	co := newConsumeOptions(opts...)
	q := m.queue(source, co.groupName())

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case item := <-q:
					if err := dispatch(ctx, DriverMemory, handler, m.wrap(q, item), co.autoAck); err != nil {
						slog.WarnContext(ctx, "memory broker settle failed", "topic", source, "error", err)
					}
				}
			}
		})
	}
	wg.Wait()

	if m.isClosed() {
		return nil
	}
	return ctx.Err()
}

func (m *Memory) wrap(q chan *memoryItem, item *memoryItem) *delivery {
	item.attempts++

	return &delivery{
		body:    item.msg.Body,
		key:     item.msg.Key,
		headers: item.msg.Headers,
		id:      item.id,
		topic:   item.topic,
		ts:      item.ts,
		nack: func(context.Context) error {
			if item.attempts >= m.maxAttempts {
				slog.Warn("memory broker dropped message after max attempts", "topic", item.topic, "id", item.id, "attempts", item.attempts)
				return nil
			}
			go func() {
				select {
				case q <- item:
				case <-m.done:
				}
			}()
			return nil
		},
	}
}

// consumers reports how many groups are attached to topic.
func (m *Memory) consumers(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[topic])
}
