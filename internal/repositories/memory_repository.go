package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/cart-service/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps carts and guest sessions in process memory. It is used for
// local runs and tests; data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	carts    map[string]*models.Cart
	owners   map[string]string
	sessions map[string]models.GuestSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:    make(map[string]*models.Cart),
		owners:   make(map[string]string),
		sessions: make(map[string]models.GuestSession),
	}
}

// Carts returns the CartRepository view of the store.
func (m *MemoryStore) Carts() CartRepository {
	return memoryCartRepository{m}
}

// Sessions returns the GuestSessionRepository view of the store.
func (m *MemoryStore) Sessions() GuestSessionRepository {
	return memoryGuestSessionRepository{m}
}

type memoryCartRepository struct {
	*MemoryStore
}

func (r memoryCartRepository) Create(_ context.Context, kind models.OwnerKind, ownerRef string) (*models.Cart, error) {

	if !kind.Valid() {
		return nil, fmt.Errorf("invalid owner kind %q", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	indexKey := ownerIndexKey(kind, ownerRef)
	if _, ok := r.owners[indexKey]; ok {
		return nil, fmt.Errorf("%w: %s %s", ErrCartExists, kind, ownerRef)
	}

	now := time.Now().UTC()
	cart := &models.Cart{
		ID:        uuid.NewString(),
		OwnerKind: kind,
		Items:     []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if kind == models.OwnerKindRegistered {
		cart.OwnerID = ownerRef
	} else {
		cart.GuestID = ownerRef
	}

	r.carts[cart.ID] = cart
	r.owners[indexKey] = cart.ID

	return cart.Clone(), nil
}

func (r memoryCartRepository) FindByID(_ context.Context, cartID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return nil, ErrCartNotFound
	}

	return cart.Clone(), nil
}

func (r memoryCartRepository) FindByOwnerID(_ context.Context, ownerID string) (*models.Cart, error) {
	return r.findByOwner(models.OwnerKindRegistered, ownerID)
}

func (r memoryCartRepository) FindByGuestID(_ context.Context, guestID string) (*models.Cart, error) {
	return r.findByOwner(models.OwnerKindGuest, guestID)
}

func (r memoryCartRepository) Update(_ context.Context, cart *models.Cart) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCartNotFound, cart.ID)
	}

	if stored.Version != cart.Version {
		return nil, fmt.Errorf("%w: cart %s at version %d, stored %d", ErrVersionConflict, cart.ID, cart.Version, stored.Version)
	}

	next := stored.Clone()
	next.Items = cart.Clone().Items
	next.Version++
	next.UpdatedAt = time.Now().UTC()

	r.carts[cart.ID] = next

	return next.Clone(), nil
}

func (r memoryCartRepository) Delete(_ context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return nil
	}

	delete(r.carts, cartID)

	indexKey := ownerIndexKey(cart.OwnerKind, cart.OwnerRef())
	if r.owners[indexKey] == cartID {
		delete(r.owners, indexKey)
	}

	return nil
}

func (r memoryCartRepository) findByOwner(kind models.OwnerKind, ownerRef string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cartID, ok := r.owners[ownerIndexKey(kind, ownerRef)]
	if !ok {
		return nil, ErrCartNotFound
	}

	cart, ok := r.carts[cartID]
	if !ok {
		return nil, ErrCartNotFound
	}

	return cart.Clone(), nil
}

type memoryGuestSessionRepository struct {
	*MemoryStore
}

func (r memoryGuestSessionRepository) Touch(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	session, ok := r.sessions[sessionID]
	if !ok {
		session = models.GuestSession{SessionID: sessionID, CreatedAt: now}
	}
	session.UpdatedAt = now

	r.sessions[sessionID] = session

	return nil
}

func (r memoryGuestSessionRepository) DeleteBySessionID(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)

	return nil
}

// HasSession reports whether a guest session has been recorded.
func (m *MemoryStore) HasSession(sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.sessions[sessionID]
	return ok
}
