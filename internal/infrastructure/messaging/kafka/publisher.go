package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

const DefaultTopic = "identity-events"

// Config captures the broker settings for the identity event stream.
type Config struct {
	Brokers []string
	Topic   string
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes identity events to Kafka keyed by identity, so that every
// event for one identity lands on the same partition.
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a Publisher backed by a kafka.Writer.
func NewPublisher(cfg Config) *Publisher {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

var _ ports.EventPublisher = (*Publisher)(nil)

// message is the wire shape consumed by the notification service. Secret is
// only set for OTP events.
type message struct {
	Type       string            `json:"type"`
	IdentityID string            `json:"identityId,omitempty"`
	Email      string            `json:"email,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Secret     string            `json:"secret,omitempty"`
}

func (p *Publisher) Publish(ctx context.Context, event domain.AuthEvent) error {
	value, err := json.Marshal(message{
		Type:       string(event.Type),
		IdentityID: event.IdentityID,
		Email:      event.Email,
		OccurredAt: event.OccurredAt.UTC(),
		Metadata:   event.Metadata,
		Secret:     event.Secret,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ShardKey()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
