package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aaravmahajanofficial/cart-service/internal/models"
	"github.com/google/uuid"
)

const (
	TypeCartUpdated = "cart.updated"
	TypeCartMerged  = "cart.merged"
	TypeCartDeleted = "cart.deleted"
)

const (
	AggregateTypeCart = "cart"
	SourceCartService = "cart-service"
)

// Event is the envelope written to every topic.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	Data          json.RawMessage `json:"data"`
}

func NewEvent(eventType, aggregateID string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: AggregateTypeCart,
		Timestamp:     time.Now().UTC(),
		Source:        SourceCartService,
		Data:          payload,
	}, nil
}

type CartData struct {
	OwnerKind models.OwnerKind  `json:"owner_kind"`
	OwnerID   string            `json:"owner_id"`
	Items     []models.CartItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Version   int64             `json:"version"`
}

type CartMergedData struct {
	CartData
	GuestSessionID string `json:"guest_session_id"`
	GuestCartID    string `json:"guest_cart_id"`
}

func newCartData(cart *models.Cart) CartData {
	count := 0
	for _, item := range cart.Items {
		count += item.Quantity
	}

	return CartData{
		OwnerKind: cart.OwnerKind,
		OwnerID:   cart.OwnerRef(),
		Items:     cart.Items,
		ItemCount: count,
		Version:   cart.Version,
	}
}

// Publisher emits cart domain events. Callers treat publish failures as non-fatal.
type Publisher interface {
	CartUpdated(ctx context.Context, cart *models.Cart) error
	CartMerged(ctx context.Context, cart *models.Cart, guestCartID, guestSessionID string) error
	CartDeleted(ctx context.Context, cart *models.Cart) error
	Close() error
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) CartUpdated(context.Context, *models.Cart) error { return nil }

func (NoopPublisher) CartMerged(context.Context, *models.Cart, string, string) error { return nil }

func (NoopPublisher) CartDeleted(context.Context, *models.Cart) error { return nil }

func (NoopPublisher) Close() error { return nil }
