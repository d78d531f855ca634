package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Publisher JSON-encodes payloads and writes them keyed by the supplied key.
type Publisher struct {
	producer messageWriter
	now      func() time.Time
}

// NewPublisher wraps a producer.
func NewPublisher(producer messageWriter) *Publisher {
	return &Publisher{producer: producer, now: time.Now}
}

// Publish delivers a single event.
func (p *Publisher) Publish(ctx context.Context, topic, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", topic, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  p.now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventType(topic))},
			{Key: "content_type", Value: []byte("application/json")},
		},
	}
	if err := p.producer.WriteMessages(ctx, topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// NoopPublisher drops every event. It is used when no brokers are configured.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }
