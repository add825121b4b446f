package kafka

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/ChemSource/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats { return kafka.WriterStats{} }

func newTestProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:         []string{"localhost:9092"},
		MaxMessageBytes: 64,
	}
}

func newTestProducer(w WriterInterface) *Producer {
	return &Producer{
		writer: w,
		config: newTestProducerConfig(),
		logger: logging.NewNopLogger(),
		stats:  &producerCounters{},
	}
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(newTestProducerConfig()))

	cfg := newTestProducerConfig()
	cfg.Brokers = nil
	assert.Error(t, ValidateProducerConfig(cfg))

	cfg = newTestProducerConfig()
	cfg.MaxRetries = -1
	assert.Error(t, ValidateProducerConfig(cfg))
}

func TestNewProducer_Defaults(t *testing.T) {
	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, CompressionCodec: "snappy", Acks: "all"}, nil)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 3, p.config.MaxRetries)
	assert.Equal(t, 1024*1024, p.config.MaxMessageBytes)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, kafka.Snappy, w.Compression)
	assert.Equal(t, 4, w.MaxAttempts)
}

func TestNewProducer_SecuritySettings(t *testing.T) {
	cfg := ProducerConfig{Brokers: []string{"localhost:9092"}}
	cfg.Security.SASLMechanism = "SCRAM-SHA-512"
	cfg.Security.SASLUsername = "svc"
	cfg.Security.SASLPassword = "secret"
	p, err := NewProducer(cfg, nil)
	require.NoError(t, err)
	w := p.writer.(*kafka.Writer)
	tr := w.Transport.(*kafka.Transport)
	require.NotNil(t, tr.SASL)
	assert.Equal(t, "SCRAM-SHA-512", tr.SASL.Name())

	cfg.Security.SASLMechanism = "GSSAPI"
	_, err = NewProducer(cfg, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidConfig))

	cfg.Security = SecurityConfig{TLSEnabled: true, TLSCertPath: filepath.Join(t.TempDir(), "missing.pem")}
	_, err = NewProducer(cfg, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidConfig))

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not pem"), 0o600))
	cfg.Security.TLSCertPath = bad
	_, err = NewProducer(cfg, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidConfig))
}

func TestPublish_Success(t *testing.T) {
	var captured []kafka.Message
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
			captured = msgs
			return nil
		},
	})

	err := p.Publish(context.Background(), &Message{
		Topic:   TopicResults,
		Key:     []byte("67-64-1"),
		Value:   []byte("v"),
		Headers: map[string]string{"event_type": "x"},
	})
	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, TopicResults, captured[0].Topic)
	assert.Equal(t, "67-64-1", string(captured[0].Key))
	assert.Equal(t, []kafka.Header{{Key: "event_type", Value: []byte("x")}}, captured[0].Headers)
	assert.False(t, captured[0].Time.IsZero())

	st := p.Stats()
	assert.Equal(t, int64(1), st.Sent)
	assert.Equal(t, int64(1), st.Bytes)
	assert.False(t, st.LastSentAt.IsZero())
}

func TestPublish_Validation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(context.Context, ...kafka.Message) error {
			t.Fatal("writer must not be called")
			return nil
		},
	})
	ctx := context.Background()

	assert.True(t, apperrors.IsCode(p.Publish(ctx, &Message{Value: []byte("v")}), apperrors.ErrCodeValidation))
	assert.True(t, apperrors.IsCode(p.Publish(ctx, &Message{Topic: "t"}), apperrors.ErrCodeValidation))
	big := make([]byte, 65)
	assert.True(t, apperrors.IsCode(p.Publish(ctx, &Message{Topic: "t", Value: big}), apperrors.ErrCodeValidation))
}

func TestPublish_Failure(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(context.Context, ...kafka.Message) error {
			return errors.New("write failed")
		},
	})
	err := p.Publish(context.Background(), &Message{Topic: "t", Value: []byte("v")})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMessageQueue))
	assert.Equal(t, int64(1), p.Stats().Failed)
}

func TestClose_RejectsFurtherPublishes(t *testing.T) {
	closes := 0
	p := newTestProducer(&mockKafkaWriter{closeFunc: func() error { closes++; return nil }})

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closes)
	assert.ErrorIs(t, p.Publish(context.Background(), &Message{Topic: "t", Value: []byte("v")}), ErrProducerClosed)
}

//Personal.AI order the ending
