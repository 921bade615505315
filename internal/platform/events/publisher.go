// Package events publishes domain lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event names.
const (
	PolicyIssued     = "policy.issued"
	PolicyCancelled  = "policy.cancelled"
	PolicyRenewed    = "policy.renewed"
	ClaimSubmitted   = "claim.submitted"
	PaymentCompleted = "payment.completed"
	PaymentFailed    = "payment.failed"
	PaymentRefunded  = "payment.refunded"
)

// Envelope is the JSON document written for every event.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher is the interface used by usecases to publish events.
type Publisher interface {
	Publish(ctx context.Context, event, key string, payload any) error
	Close() error
}

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to "<prefix>.<aggregate>" topics, keyed by aggregate id.
type KafkaPublisher struct {
	writer      Writer
	topicPrefix string
	now         func() time.Time
}

// NewKafkaPublisher creates a producer for the given brokers. The topic is chosen per message.
func NewKafkaPublisher(brokers []string, topicPrefix string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return NewKafkaPublisherWithWriter(w, topicPrefix)
}

// NewKafkaPublisherWithWriter allows injecting a test writer.
func NewKafkaPublisherWithWriter(w Writer, topicPrefix string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topicPrefix: topicPrefix, now: time.Now}
}

// Publish marshals the envelope and writes a single message.
func (p *KafkaPublisher) Publish(ctx context.Context, event, key string, payload any) error {
	b, err := json.Marshal(Envelope{Type: event, OccurredAt: p.now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event, err)
	}

	msg := kafka.Message{
		Topic: p.Topic(event),
		Key:   []byte(key),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event %s: %w", event, err)
	}
	return nil
}

// Topic maps "policy.issued" to "<prefix>.policy".
func (p *KafkaPublisher) Topic(event string) string {
	aggregate, _, _ := strings.Cut(event, ".")
	return p.topicPrefix + "." + aggregate
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher writes events to the structured log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger uses slog.Default.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event instead of sending it.
func (p *LogPublisher) Publish(ctx context.Context, event, key string, payload any) error {
	p.logger.InfoContext(ctx, "domain event", "event", event, "key", key, "data", payload)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// PublishOrLog publishes and only logs a failure. Event delivery never fails a request.
func PublishOrLog(ctx context.Context, p Publisher, event, key string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event, key, payload); err != nil {
		slog.WarnContext(ctx, "event publish failed", "event", event, "key", key, "error", err)
	}
}
