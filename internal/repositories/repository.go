package repository

import (
	"context"
	"errors"

	"github.com/aaravmahajanofficial/cart-service/internal/models"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrCartExists      = errors.New("cart already exists for owner")
	ErrVersionConflict = errors.New("cart version conflict")
)

// CartRepository persists whole cart records. Lookups that miss return ErrCartNotFound.
type CartRepository interface {
	Create(ctx context.Context, kind models.OwnerKind, ownerRef string) (*models.Cart, error)
	FindByID(ctx context.Context, cartID string) (*models.Cart, error)
	// FindByOwnerID only matches registered carts.
	FindByOwnerID(ctx context.Context, ownerID string) (*models.Cart, error)
	// FindByGuestID only matches guest carts.
	FindByGuestID(ctx context.Context, guestID string) (*models.Cart, error)
	// Update replaces the item set when the stored version equals cart.Version,
	// returning the record with its bumped version. A stale version yields ErrVersionConflict.
	Update(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	// Delete is idempotent.
	Delete(ctx context.Context, cartID string) error
}

type GuestSessionRepository interface {
	// Touch records the session, refreshing updated_at when it already exists.
	Touch(ctx context.Context, sessionID string) error
	// DeleteBySessionID is idempotent.
	DeleteBySessionID(ctx context.Context, sessionID string) error
}
