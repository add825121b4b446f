package kafka

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

type mockKafkaReader struct {
	fetchFunc  func(ctx context.Context) (kafka.Message, error)
	commitFunc func(ctx context.Context, msgs ...kafka.Message) error
	closed     atomic.Bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.commitFunc != nil {
		return m.commitFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.closed.Store(true)
	return nil
}

// onceReader yields msgs in order and then blocks until cancelled.
func onceReader(msgs ...kafka.Message) *mockKafkaReader {
	var next atomic.Int32
	return &mockKafkaReader{
		fetchFunc: func(ctx context.Context) (kafka.Message, error) {
			i := int(next.Add(1)) - 1
			if i < len(msgs) {
				return msgs[i], nil
			}
			<-ctx.Done()
			return kafka.Message{}, ctx.Err()
		},
	}
}

func newTestConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "test-group",
		Topics:  []string{TopicResults},
	}
}

func newTestConsumer(reader ReaderInterface, cfg ConsumerConfig) *Consumer {
	return &Consumer{
		reader:   reader,
		config:   cfg,
		logger:   logging.NewNopLogger(),
		handlers: make(map[string]Handler),
		stats:    &consumerCounters{},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConsumerConfig)
		wantErr bool
	}{
		{"valid", func(*ConsumerConfig) {}, false},
		{"no brokers", func(c *ConsumerConfig) { c.Brokers = nil }, true},
		{"no group", func(c *ConsumerConfig) { c.GroupID = "" }, true},
		{"no topics", func(c *ConsumerConfig) { c.Topics = nil }, true},
		{"bad offset reset", func(c *ConsumerConfig) { c.AutoOffsetReset = "middle" }, true},
		{"negative retries", func(c *ConsumerConfig) { c.RetryConfig.MaxRetries = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConsumerConfig()
			tt.mutate(&cfg)
			err := ValidateConsumerConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewConsumer_AppliesDefaults(t *testing.T) {
	c, err := NewConsumer(newTestConsumerConfig(), nil)
	require.NoError(t, err)
	defer c.reader.Close()

	assert.Equal(t, "latest", c.config.AutoOffsetReset)
	assert.Equal(t, time.Second, c.config.CommitInterval)
}

func TestStart_AlreadyRunning(t *testing.T) {
	c := newTestConsumer(&mockKafkaReader{}, newTestConsumerConfig())
	c.running.Store(true)
	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
}

func TestConsumeLoop_DispatchesAndCommits(t *testing.T) {
	reader := onceReader(kafka.Message{
		Topic:   TopicResults,
		Offset:  4,
		Key:     []byte("67-64-1"),
		Value:   []byte(`{"event_id":"e1"}`),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte("supplier.results.published")}},
	})
	var committed atomic.Int32
	reader.commitFunc = func(_ context.Context, msgs ...kafka.Message) error {
		committed.Add(int32(len(msgs)))
		return nil
	}
	c := newTestConsumer(reader, newTestConsumerConfig())

	got := make(chan *Message, 1)
	c.Subscribe(TopicResults, func(_ context.Context, msg *Message) error {
		got <- msg
		return nil
	})
	require.NoError(t, c.Start(context.Background()))

	select {
	case msg := <-got:
		assert.Equal(t, "67-64-1", string(msg.Key))
		assert.Equal(t, int64(4), msg.Offset)
		assert.Equal(t, "supplier.results.published", msg.Headers["event_type"])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handler")
	}

	require.NoError(t, c.Close())
	assert.True(t, reader.closed.Load())
	assert.Equal(t, int32(1), committed.Load())
	st := c.Stats()
	assert.Equal(t, int64(1), st.Consumed)
	assert.Equal(t, int64(1), st.Processed)
}

func TestConsumeLoop_UnknownTopicIsCommitted(t *testing.T) {
	reader := onceReader(kafka.Message{Topic: "other", Value: []byte("x")})
	done := make(chan struct{})
	reader.commitFunc = func(_ context.Context, msgs ...kafka.Message) error {
		assert.Equal(t, "other", msgs[0].Topic)
		close(done)
		return nil
	}
	c := newTestConsumer(reader, newTestConsumerConfig())
	require.NoError(t, c.Start(context.Background()))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for commit")
	}
	require.NoError(t, c.Close())
	assert.Zero(t, c.Stats().Processed)
}

func TestClose_Idempotent(t *testing.T) {
	c := newTestConsumer(&mockKafkaReader{}, newTestConsumerConfig())
	require.NoError(t, c.Start(context.Background()))
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestProcessMessage_RetrySuccess(t *testing.T) {
	cfg := newTestConsumerConfig()
	cfg.RetryConfig = RetryConfig{MaxRetries: 2, RetryBackoff: time.Millisecond}
	c := newTestConsumer(nil, cfg)

	attempts := 0
	handler := func(ctx context.Context, msg *Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("fail")
		}
		return nil
	}

	err := c.processMessage(context.Background(), &Message{}, handler)
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(1), c.Stats().Retried)
}

func TestProcessMessage_RetryExhausted(t *testing.T) {
	cfg := newTestConsumerConfig()
	cfg.RetryConfig = RetryConfig{MaxRetries: 1, RetryBackoff: time.Millisecond}
	c := newTestConsumer(nil, cfg)

	attempts := 0
	err := c.processMessage(context.Background(), &Message{}, func(context.Context, *Message) error {
		attempts++
		return errors.New("fail")
	})
	assert.EqualError(t, err, "fail")
	assert.Equal(t, 2, attempts)
}

func TestProcessMessage_CancelledDuringBackoff(t *testing.T) {
	cfg := newTestConsumerConfig()
	cfg.RetryConfig = RetryConfig{MaxRetries: 3, RetryBackoff: time.Hour}
	c := newTestConsumer(nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	err := c.processMessage(ctx, &Message{}, func(context.Context, *Message) error {
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

//Personal.AI order the ending
