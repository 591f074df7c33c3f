package events

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/vbonduro/everything/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	kafkaWriteTimeout = 5 * time.Second
	kafkaMaxAttempts  = 3
)

// KafkaPublisher writes every event to a topic, keyed by device so a device's
// events stay ordered within a partition. Writes are asynchronous: Publish
// only queues the message and delivery failures are logged, so an unreachable
// broker never holds up the request that created the event.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{logger: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: kafkaWriteTimeout,
		MaxAttempts:  kafkaMaxAttempts,
		Async:        true,
		Completion:   p.completed,
	}
	return p
}

// completed is called by the writer once a batch is delivered or given up on.
func (p *KafkaPublisher) completed(msgs []kafka.Message, err error) {
	if err != nil {
		p.logger.Warn("failed to deliver events to kafka", "count", len(msgs), "error", err)
		return
	}
	p.logger.Debug("events delivered to kafka", "count", len(msgs))
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *domain.Event) error {
	msg, err := eventMessage(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}
	p.logger.Debug("event queued for kafka", "event_id", e.ID, "event_type", e.EventType)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func eventMessage(e *domain.Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(e.DeviceID, 10)),
		Value: value,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "severity", Value: []byte(e.Severity)},
		},
	}, nil
}
