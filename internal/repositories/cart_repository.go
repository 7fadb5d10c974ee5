package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/cart-service/internal/models"
	"github.com/aaravmahajanofficial/cart-service/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation           = "23505"
	pqInvalidTextRepresentation = "22P02"
)

const cartColumns = `id, owner_kind, owner_id, guest_id, items, version, created_at, updated_at`

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

func (r *cartRepository) Create(ctx context.Context, kind models.OwnerKind, ownerRef string) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if !kind.Valid() {
		return nil, fmt.Errorf("invalid owner kind %q", kind)
	}

	cart := &models.Cart{
		ID:        uuid.NewString(),
		OwnerKind: kind,
		Items:     []models.CartItem{},
	}

	if kind == models.OwnerKindRegistered {
		cart.OwnerID = ownerRef
	} else {
		cart.GuestID = ownerRef
	}

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart items: %w", err)
	}

	query := `
		INSERT INTO carts (id, owner_kind, owner_id, guest_id, items, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = r.DB.QueryRowContext(dbCtx, query, cart.ID, string(kind), nullString(cart.OwnerID), nullString(cart.GuestID), itemsJSON).
		Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, fmt.Errorf("%w: %s %s", ErrCartExists, kind, ownerRef)
		}
		return nil, fmt.Errorf("failed to insert cart: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) FindByID(ctx context.Context, cartID string) (*models.Cart, error) {
	if !isCartID(cartID) {
		return nil, ErrCartNotFound
	}

	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`

	return r.findOne(ctx, query, cartID)
}

func (r *cartRepository) FindByOwnerID(ctx context.Context, ownerID string) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE owner_kind = $1 AND owner_id = $2`

	return r.findOne(ctx, query, string(models.OwnerKindRegistered), ownerID)
}

func (r *cartRepository) FindByGuestID(ctx context.Context, guestID string) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE owner_kind = $1 AND guest_id = $2`

	return r.findOne(ctx, query, string(models.OwnerKindGuest), guestID)
}

func (r *cartRepository) Update(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if !isCartID(cart.ID) {
		return nil, fmt.Errorf("%w: %s", ErrCartNotFound, cart.ID)
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart items: %w", err)
	}

	query := `
		UPDATE carts
		SET items = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING version, updated_at
	`

	updated := cart.Clone()

	err = r.DB.QueryRowContext(dbCtx, query, itemsJSON, cart.ID, cart.Version).Scan(&updated.Version, &updated.UpdatedAt)
	if err == nil {
		return updated, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update the cart: %w", err)
	}

	// Nothing matched: either the cart is gone or somebody else bumped the version.
	var exists bool
	if err := r.DB.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM carts WHERE id = $1)`, cart.ID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check cart existence: %w", err)
	}

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCartNotFound, cart.ID)
	}

	return nil, fmt.Errorf("%w: cart %s at version %d", ErrVersionConflict, cart.ID, cart.Version)
}

func (r *cartRepository) Delete(ctx context.Context, cartID string) error {
	if !isCartID(cartID) {
		return nil
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := r.DB.ExecContext(dbCtx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to delete the cart: %w", err)
	}

	return nil
}

func (r *cartRepository) findOne(ctx context.Context, query string, args ...any) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	cart := &models.Cart{}

	var (
		kind      string
		ownerID   sql.NullString
		guestID   sql.NullString
		itemsJSON []byte
	)

	err := r.DB.QueryRowContext(dbCtx, query, args...).
		Scan(&cart.ID, &kind, &ownerID, &guestID, &itemsJSON, &cart.Version, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresentation {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	cart.OwnerKind = models.OwnerKind(kind)
	cart.OwnerID = ownerID.String
	cart.GuestID = guestID.String

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	return cart, nil
}

// isCartID reports whether id can match the uuid primary key; anything else is an unknown cart.
func isCartID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
