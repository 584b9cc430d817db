package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/careloop/medassist/internal/config"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/pkg/errors"
)

// eventSource identifies this service in event envelopes.
const eventSource = "medassist"

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes alert events. Safe for concurrent use.
type Producer struct {
	writer WriterInterface
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer builds a producer writing to the configured brokers. Topic is
// chosen per message, so one writer serves every alert topic.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers are required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
	}
	return &Producer{writer: writer, logger: logger}, nil
}

// NewProducerWithWriter builds a producer on a caller-supplied writer.
func NewProducerWithWriter(writer WriterInterface, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: writer, logger: logger}
}

// Publish wraps payload in an event envelope and writes it to topic, keyed
// by userID so one user's alerts stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, topic, eventType, userID string, payload any) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeMessagingError, "producer is closed")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode alert payload")
	}
	envelope, err := json.Marshal(EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       body,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(userID),
		Value: envelope,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("alert publish failed",
			logging.String("topic", topic),
			logging.Err(err),
		)
		return errors.Wrap(err, errors.ErrCodeAlertPublishFailed, "failed to publish alert")
	}

	p.logger.Debug("alert published",
		logging.String("topic", topic),
		logging.String("event_type", eventType),
	)
	return nil
}

// PublishConflictWarning publishes one conflict warning alert.
func (p *Producer) PublishConflictWarning(ctx context.Context, payload ConflictWarningPayload) error {
	return p.Publish(ctx, TopicConflictWarning, "conflict_warning", payload.UserID, payload)
}

// PublishDoseSkipped publishes a skipped-dose alert.
func (p *Producer) PublishDoseSkipped(ctx context.Context, payload DoseEventPayload) error {
	return p.Publish(ctx, TopicDoseSkipped, "dose_skipped", payload.UserID, payload)
}

// Close flushes and shuts down the writer. Further publishes fail fast.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
