package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func hasQueue(m *Memory, topic, group string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.queues[topic][group]
	return ok
}

func startConsumer(t *testing.T, m *Memory, topic string, handler Handler, opts ...ConsumeOption) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() { done <- m.Consume(ctx, topic, handler, opts...) }()

	group := newConsumeOptions(opts...).groupName()
	require.Eventually(t, func() bool { return hasQueue(m, topic, group) }, time.Second, 5*time.Millisecond)

	return cancel, done
}

func TestMemory_PublishConsume(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	got := make(chan Message, 1)
	startConsumer(t, m, "account.otp_issued", func(_ context.Context, msg Message) error {
		got <- msg
		return nil
	}, WithGroup("notification"), WithAutoAck(true))

	// Act
	res, err := m.Publish(context.Background(), "account.otp_issued", OutgoingMessage{
		Body:    []byte(`{"code":"482913"}`),
		Key:     []byte("7"),
		Headers: []Header{{Key: "cID", Value: []byte("corr-1")}},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "account.otp_issued", res.Topic)
	assert.NotEmpty(t, res.MessageID)

	select {
	case msg := <-got:
		assert.Equal(t, `{"code":"482913"}`, string(msg.Body()))
		assert.Equal(t, "7", string(msg.Key()))
		assert.Equal(t, "corr-1", HeaderValue(msg.Headers(), "cID"))
		assert.Equal(t, res.MessageID, msg.ID())
		assert.Equal(t, "account.otp_issued", msg.Topic())
		assert.False(t, msg.Timestamp().IsZero())
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestMemory_NackRedelivers(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{MaxAttempts: 3})
	t.Cleanup(func() { _ = m.Close() })

	var calls atomic.Int64
	acked := make(chan struct{})
	startConsumer(t, m, "topic", func(_ context.Context, _ Message) error {
		if calls.Inc() < 3 {
			return errors.New("boom")
		}
		close(acked)
		return nil
	}, WithAutoAck(true))

	// Act
	_, err := m.Publish(context.Background(), "topic", OutgoingMessage{Body: []byte("x")})
	require.NoError(t, err)

	// Assert
	select {
	case <-acked:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not redelivered")
	}
	assert.Equal(t, int64(3), calls.Load())
}

func TestMemory_NackStopsAfterMaxAttempts(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{MaxAttempts: 2})
	t.Cleanup(func() { _ = m.Close() })

	var calls atomic.Int64
	startConsumer(t, m, "topic", func(_ context.Context, _ Message) error {
		calls.Inc()
		return errors.New("always")
	}, WithAutoAck(true))

	// Act
	_, err := m.Publish(context.Background(), "topic", OutgoingMessage{Body: []byte("x")})
	require.NoError(t, err)

	// Assert
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(2), calls.Load())
}

func TestMemory_GroupsShareAndFanOut(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	var mu sync.Mutex
	seen := map[string]int{}
	record := func(group string) Handler {
		return func(_ context.Context, _ Message) error {
			mu.Lock()
			seen[group]++
			mu.Unlock()
			return nil
		}
	}

	startConsumer(t, m, "topic", record("mail"), WithGroup("mail"), WithConcurrency(2), WithAutoAck(true))
	startConsumer(t, m, "topic", record("mail"), WithGroup("mail"), WithAutoAck(true))
	startConsumer(t, m, "topic", record("audit"), WithChannel("audit"), WithAutoAck(true))

	// Act
	for range 10 {
		_, err := m.Publish(context.Background(), "topic", OutgoingMessage{Body: []byte("x")})
		require.NoError(t, err)
	}

	// Assert
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["mail"] == 10 && seen["audit"] == 10
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, m.consumers("topic"))
}

func TestMemory_PanickingHandlerIsNacked(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{MaxAttempts: 2})
	t.Cleanup(func() { _ = m.Close() })

	var calls atomic.Int64
	done := make(chan struct{})
	startConsumer(t, m, "topic", func(_ context.Context, _ Message) error {
		if calls.Inc() == 1 {
			panic("handler exploded")
		}
		close(done)
		return nil
	}, WithAutoAck(true))

	// Act
	_, err := m.Publish(context.Background(), "topic", OutgoingMessage{Body: []byte("x")})
	require.NoError(t, err)

	// Assert
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("panicking delivery was not retried")
	}
}

func TestMemory_ManualAckWins(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	var calls atomic.Int64
	startConsumer(t, m, "topic", func(ctx context.Context, msg Message) error {
		calls.Inc()
		assert.NoError(t, msg.Ack(ctx))
		return errors.New("ignored after ack")
	}, WithAutoAck(true))

	// Act
	_, err := m.Publish(context.Background(), "topic", OutgoingMessage{Body: []byte("x")})
	require.NoError(t, err)

	// Assert
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
}

func TestMemory_Close(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{})
	_, done := startConsumer(t, m, "topic", func(context.Context, Message) error { return nil })

	// Act
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	// Assert
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Consume did not return after Close")
	}

	_, err := m.Publish(context.Background(), "topic", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Consume(context.Background(), "topic", func(context.Context, Message) error { return nil }), ErrClosed)
}

func TestMemory_ConsumeStopsOnContext(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	cancel, done := startConsumer(t, m, "topic", func(context.Context, Message) error { return nil })
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Consume did not return after cancel")
	}
}

func TestMemory_Validation(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })
	ctx := context.Background()

	_, err := m.Publish(ctx, "", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrDestinationRequired)
	assert.ErrorIs(t, m.Consume(ctx, "", func(context.Context, Message) error { return nil }), ErrDestinationRequired)
	assert.ErrorIs(t, m.Consume(ctx, "topic", nil), ErrHandlerRequired)
}

func TestNewFromDriver(t *testing.T) {
	msg, err := NewFromDriver(context.Background(), " Memory ", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, msg)

	_, err = NewFromDriver(context.Background(), "rabbitmq", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver(context.Background(), DriverKafka, FactoryOptions{})
	assert.ErrorIs(t, err, ErrKafkaBrokersRequired)
}
