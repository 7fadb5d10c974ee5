package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/cart-service/internal/config"
	"github.com/aaravmahajanofficial/cart-service/internal/models"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per event, keyed by cart id so that
// events for a cart stay ordered within a partition.
type KafkaPublisher struct {
	writer      messageWriter
	topicPrefix string
}

func NewKafkaPublisher(cfg config.Kafka) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           cfg.WriteTimeout,
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
	}

	return newKafkaPublisher(w, cfg.TopicPrefix)
}

func newKafkaPublisher(w messageWriter, topicPrefix string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topicPrefix: topicPrefix}
}

// Topic maps an event type to its topic, e.g. cart.updated -> ecommerce.cart.updated.
func (p *KafkaPublisher) Topic(eventType string) string {
	return p.topicPrefix + "." + strings.TrimPrefix(eventType, AggregateTypeCart+".")
}

func (p *KafkaPublisher) CartUpdated(ctx context.Context, cart *models.Cart) error {
	return p.publish(ctx, TypeCartUpdated, cart.ID, newCartData(cart))
}

func (p *KafkaPublisher) CartMerged(ctx context.Context, cart *models.Cart, guestCartID, guestSessionID string) error {
	return p.publish(ctx, TypeCartMerged, cart.ID, CartMergedData{
		CartData:       newCartData(cart),
		GuestCartID:    guestCartID,
		GuestSessionID: guestSessionID,
	})
}

func (p *KafkaPublisher) CartDeleted(ctx context.Context, cart *models.Cart) error {
	return p.publish(ctx, TypeCartDeleted, cart.ID, newCartData(cart))
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, cartID string, data any) error {
	event, err := NewEvent(eventType, cartID, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	topic := p.Topic(eventType)

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(cartID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "source", Value: []byte(SourceCartService)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event to %s: %w", eventType, topic, err)
	}

	slog.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("event_type", eventType),
		slog.String("cart_id", cartID),
	)

	return nil
}
