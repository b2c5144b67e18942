package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Event types emitted on the booking stream.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingCompleted = "booking.completed"
)

// BookingEvent is the payload published for booking lifecycle changes.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	TherapistID string    `json:"therapist_id,omitempty"`
	CustomerID  string    `json:"customer_id,omitempty"`
	PackageID   string    `json:"package_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher emits booking lifecycle events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// KafkaPublisher writes booking events to a Kafka topic. Messages are keyed
// by booking id so all events for one booking land on the same partition in
// order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error().Msgf("kafka: "+msg, args...)
		}),
	}
	return &KafkaPublisher{writer: writer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	if event.BookingID == "" {
		return fmt.Errorf("event requires a booking id")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.BookingID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. Used when no brokers are configured.
type NopPublisher struct{}

func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

func (NopPublisher) Publish(_ context.Context, event BookingEvent) error {
	log.Debug().
		Str("type", event.Type).
		Str("booking_id", event.BookingID).
		Msg("event publishing disabled, dropping event")
	return nil
}

func (NopPublisher) Close() error { return nil }
