package kafka

import (
	"context"

	"github.com/google/uuid"
	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

// MessagePublisher is satisfied by *Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// ResultPublisher announces completed result sets on a topic. Messages are
// keyed by identifier so every search for one chemical lands on the same
// partition.
type ResultPublisher struct {
	publisher MessagePublisher
	topic     string
	logger    logging.Logger
}

func NewResultPublisher(p MessagePublisher, topic string, logger logging.Logger) *ResultPublisher {
	if topic == "" {
		topic = TopicResults
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ResultPublisher{publisher: p, topic: topic, logger: logger}
}

func (p *ResultPublisher) Name() string { return "kafka" }

// Deliver publishes a supplier.ResultsPublishedEvent summarizing rs.
func (p *ResultPublisher) Deliver(ctx context.Context, rs *supplier.ResultSet) error {
	eventID := uuid.New().String()
	env, err := NewEventEnvelope(eventID, supplier.EventTypeResultsPublished, supplier.NewResultsPublishedEvent(eventID, rs))
	if err != nil {
		return err
	}
	env.Metadata = map[string]string{"run_id": rs.RunID}

	msg, err := env.ToMessage(p.topic, rs.CAS)
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(ctx, msg); err != nil {
		return err
	}
	p.logger.Debug("results event published",
		logging.String("topic", p.topic),
		logging.String("run_id", rs.RunID),
		logging.Int("suppliers", len(rs.Suppliers)))
	return nil
}

//Personal.AI order the ending
