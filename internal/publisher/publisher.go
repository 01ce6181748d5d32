// Package publisher emits order lifecycle events to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	TopicOrdersPlaced     = "orders.placed"
	TopicOrdersUnrecorded = "orders.unrecorded"

	EventOrderPlaced     = "order.placed"
	EventOrderUnrecorded = "order.unrecorded"
)

// OrderEvent is the payload on both order topics.
type OrderEvent struct {
	Type       string        `json:"type"`
	Order      *domain.Order `json:"order"`
	Error      string        `json:"error,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
	now    func() time.Time
}

func NewKafkaPublisher(logger *slog.Logger, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return newPublisher(w, logger)
}

func newPublisher(w messageWriter, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{writer: w, logger: logger, now: time.Now}
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrdersPlaced, OrderEvent{
		Type:  EventOrderPlaced,
		Order: order,
	})
}

// OrderUnrecorded hands a paid order that could not be stored to the reconciler.
func (p *KafkaPublisher) OrderUnrecorded(ctx context.Context, order *domain.Order, cause error) error {
	event := OrderEvent{
		Type:  EventOrderUnrecorded,
		Order: order,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	return p.publish(ctx, TopicOrdersUnrecorded, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic string, event OrderEvent) error {
	event.OccurredAt = p.now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.Order.Reference), // reference keeps one payment on one partition
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "order event published",
		"topic", topic,
		"reference", event.Order.Reference,
		"order_id", event.Order.ID,
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
