package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aaravmahajanofficial/cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/cart-service/internal/config"
	appErrors "github.com/aaravmahajanofficial/cart-service/internal/errors"
	"github.com/aaravmahajanofficial/cart-service/internal/events"
	"github.com/aaravmahajanofficial/cart-service/internal/metrics"
	"github.com/aaravmahajanofficial/cart-service/internal/models"
	repository "github.com/aaravmahajanofficial/cart-service/internal/repositories"
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
)

const (
	opAddItem        = "add_item"
	opUpdateQuantity = "update_item_quantity"
	opRemoveItem     = "remove_item"
	opMerge          = "merge_guest_cart"
)

type CartService interface {
	GetOrCreateCart(ctx context.Context, principal models.Principal) (*models.Cart, error)
	GetCartByID(ctx context.Context, cartID string, principal models.Principal) (*models.Cart, error)
	AddItem(ctx context.Context, cartID string, principal models.Principal, item models.CartItem) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, cartID string, principal models.Principal, productID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, cartID string, principal models.Principal, productID string) (*models.Cart, error)
	MergeGuestCart(ctx context.Context, registeredUserID, guestSessionID string) (*models.Cart, error)
	DeleteCart(ctx context.Context, cartID string, principal models.Principal) error
	FormatCartResponse(cart *models.Cart) *models.CartResponse
}

type cartService struct {
	carts     repository.CartRepository
	sessions  repository.GuestSessionRepository
	publisher events.Publisher
	cfg       config.Cart
}

func NewCartService(carts repository.CartRepository, sessions repository.GuestSessionRepository, publisher events.Publisher, cfg config.Cart) CartService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &cartService{
		carts:     carts,
		sessions:  sessions,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *cartService) GetOrCreateCart(ctx context.Context, principal models.Principal) (*models.Cart, error) {

	if principal.Sub == "" {
		return nil, appErrors.ValidationError("Principal id is required")
	}

	return s.findOrCreate(ctx, principal.OwnerKind(), principal.Sub)
}

func (s *cartService) GetCartByID(ctx context.Context, cartID string, principal models.Principal) (*models.Cart, error) {

	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, s.storeError("get cart", cartID, err)
	}

	if cart.OwnerKind != principal.OwnerKind() {
		middleware.LoggerFromContext(ctx).Warn("Cart ownership check failed",
			slog.String("cartId", cartID),
			slog.String("reason", "owner kind mismatch"))

		return nil, appErrors.OwnershipMismatchError("Cart does not belong to current user").WithDetail("owner kind mismatch")
	}

	if cart.OwnerRef() != principal.Sub {
		middleware.LoggerFromContext(ctx).Warn("Cart ownership check failed",
			slog.String("cartId", cartID),
			slog.String("reason", "owner id mismatch"))

		return nil, appErrors.OwnershipMismatchError("Cart does not belong to current user").WithDetail("owner id mismatch")
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, cartID string, principal models.Principal, item models.CartItem) (*models.Cart, error) {

	switch {
	case item.ProductID == "":
		return nil, appErrors.AddValidationError("productId", "must not be empty")
	case item.Name == "":
		return nil, appErrors.AddValidationError("name", "must not be empty")
	case item.Quantity < 1:
		return nil, appErrors.AddValidationError("quantity", "must be at least 1")
	case item.Price < 0:
		return nil, appErrors.AddValidationError("price", "must not be negative")
	}

	cart, err := s.mutate(ctx, opAddItem, cartID, principal, func(cart *models.Cart) error {
		if i := cart.FindItem(item.ProductID); i >= 0 {
			cart.Items[i].Quantity += item.Quantity
			return nil
		}

		cart.Items = append(cart.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, cart)

	return cart, nil
}

// UpdateItemQuantity sets an absolute quantity. Quantities below one are rejected.
func (s *cartService) UpdateItemQuantity(ctx context.Context, cartID string, principal models.Principal, productID string, quantity int) (*models.Cart, error) {

	if quantity < 1 {
		return nil, appErrors.AddValidationError("quantity", "must be at least 1")
	}

	cart, err := s.mutate(ctx, opUpdateQuantity, cartID, principal, func(cart *models.Cart) error {
		i := cart.FindItem(productID)
		if i < 0 {
			return appErrors.NotFoundError("Item not found in cart").
				WithDetail(fmt.Sprintf("update item quantity: product %s not in cart %s", productID, cartID))
		}

		cart.Items[i].Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, cart)

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartID string, principal models.Principal, productID string) (*models.Cart, error) {

	cart, err := s.mutate(ctx, opRemoveItem, cartID, principal, func(cart *models.Cart) error {
		i := cart.FindItem(productID)
		if i < 0 {
			return appErrors.NotFoundError("Item not found in cart").
				WithDetail(fmt.Sprintf("remove item: product %s not in cart %s", productID, cartID))
		}

		cart.Items = slices.Delete(cart.Items, i, i+1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, cart)

	return cart, nil
}

// MergeGuestCart moves the guest cart's items into the registered user's cart, then deletes the
// guest cart and the guest session. A second call for the same session fails with NotFound.
func (s *cartService) MergeGuestCart(ctx context.Context, registeredUserID, guestSessionID string) (*models.Cart, error) {

	logger := middleware.LoggerFromContext(ctx).With(
		slog.String("guestSessionId", guestSessionID),
		slog.String("userId", registeredUserID),
	)

	if registeredUserID == "" {
		return nil, appErrors.ValidationError("Registered user id is required")
	}

	if guestSessionID == "" {
		return nil, appErrors.AddValidationError("guestSessionId", "must not be empty")
	}

	guestCart, err := s.carts.FindByGuestID(ctx, guestSessionID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, appErrors.NotFoundError("Guest cart not found").
				WithDetail(fmt.Sprintf("merge guest cart: no cart for guest session %s", guestSessionID)).
				WithError(err)
		}
		metrics.CartMerged("failed")
		return nil, s.storeError("merge guest cart", guestSessionID, err)
	}

	userCart, err := s.findOrCreate(ctx, models.OwnerKindRegistered, registeredUserID)
	if err != nil {
		metrics.CartMerged("failed")
		return nil, err
	}

	outcome := "empty_guest"

	if len(guestCart.Items) > 0 {
		current := userCart

		err = s.retry(ctx, func(attempt int) error {
			if attempt > 0 {
				fresh, err := s.carts.FindByID(ctx, userCart.ID)
				if err != nil {
					return backoff.Permanent(s.storeError("merge guest cart", userCart.ID, err))
				}
				current = fresh
			}

			next := current.Clone()
			next.Items = mergeItems(current.Items, guestCart.Items)

			updated, err := s.carts.Update(ctx, next)
			if err != nil {
				return s.updateError(ctx, opMerge, userCart.ID, err)
			}

			userCart = updated
			return nil
		})
		if err != nil {
			metrics.CartMerged("failed")
			return nil, s.conflictError(opMerge, userCart.ID, err)
		}

		outcome = "merged"
	}

	if err := s.carts.Delete(ctx, guestCart.ID); err != nil {
		metrics.CartMerged("failed")
		return nil, appErrors.DatabaseError("Failed to delete guest cart").
			WithDetail(fmt.Sprintf("merge guest cart: cart %s", guestCart.ID)).
			WithError(err)
	}

	if err := s.sessions.DeleteBySessionID(ctx, guestSessionID); err != nil {
		metrics.CartMerged("failed")
		return nil, appErrors.DatabaseError("Failed to delete guest session").
			WithDetail(fmt.Sprintf("merge guest cart: session %s", guestSessionID)).
			WithError(err)
	}

	metrics.CartMerged(outcome)
	logger.Info("Guest cart merged",
		slog.String("cartId", userCart.ID),
		slog.String("guestCartId", guestCart.ID),
		slog.Int("guestItems", len(guestCart.Items)))

	if err := s.publisher.CartMerged(ctx, userCart, guestCart.ID, guestSessionID); err != nil {
		logger.Warn("Failed to publish cart merged event", slog.String("error", err.Error()))
	}

	return userCart, nil
}

func (s *cartService) DeleteCart(ctx context.Context, cartID string, principal models.Principal) error {

	cart, err := s.GetCartByID(ctx, cartID, principal)
	if err != nil {
		return err
	}

	if err := s.carts.Delete(ctx, cart.ID); err != nil {
		return s.storeError("delete cart", cartID, err)
	}

	if err := s.publisher.CartDeleted(ctx, cart); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to publish cart deleted event",
			slog.String("cartId", cart.ID),
			slog.String("error", err.Error()))
	}

	return nil
}

func (s *cartService) FormatCartResponse(cart *models.Cart) *models.CartResponse {

	total := decimal.Zero
	for _, item := range cart.Items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}

	return &models.CartResponse{
		CartID: cart.ID,
		Items:  items,
		Total:  total.Round(2).InexactFloat64(),
	}
}

func (s *cartService) findOrCreate(ctx context.Context, kind models.OwnerKind, ownerRef string) (*models.Cart, error) {

	cart, err := s.findByOwner(ctx, kind, ownerRef)
	if err == nil {
		return cart, nil
	}

	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, s.storeError("get or create cart", ownerRef, err)
	}

	cart, err = s.carts.Create(ctx, kind, ownerRef)
	if errors.Is(err, repository.ErrCartExists) {
		// Lost a creation race with a concurrent request for the same owner.
		cart, err = s.findByOwner(ctx, kind, ownerRef)
		if err != nil {
			return nil, s.storeError("get or create cart", ownerRef, err)
		}
		return cart, nil
	}
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to create cart").
			WithDetail(fmt.Sprintf("get or create cart: %s %s", kind, ownerRef)).
			WithError(err)
	}

	metrics.CartCreated(string(kind))

	if kind == models.OwnerKindGuest {
		if err := s.sessions.Touch(ctx, ownerRef); err != nil {
			middleware.LoggerFromContext(ctx).Warn("Failed to record guest session",
				slog.String("guestSessionId", ownerRef),
				slog.String("error", err.Error()))
		}
	}

	return cart, nil
}

func (s *cartService) findByOwner(ctx context.Context, kind models.OwnerKind, ownerRef string) (*models.Cart, error) {
	if kind == models.OwnerKindGuest {
		return s.carts.FindByGuestID(ctx, ownerRef)
	}

	return s.carts.FindByOwnerID(ctx, ownerRef)
}

// mutate runs read, ownership check, change and compare-and-swap write, repeating the whole
// sequence when another writer got there first.
func (s *cartService) mutate(ctx context.Context, op, cartID string, principal models.Principal, change func(cart *models.Cart) error) (*models.Cart, error) {

	var result *models.Cart

	err := s.retry(ctx, func(int) error {
		cart, err := s.GetCartByID(ctx, cartID, principal)
		if err != nil {
			return backoff.Permanent(err)
		}

		next := cart.Clone()
		if err := change(next); err != nil {
			return backoff.Permanent(err)
		}

		updated, err := s.carts.Update(ctx, next)
		if err != nil {
			return s.updateError(ctx, op, cartID, err)
		}

		result = updated
		return nil
	})
	if err != nil {
		return nil, s.conflictError(op, cartID, err)
	}

	metrics.ItemMutated(op)

	return result, nil
}

func (s *cartService) retry(ctx context.Context, fn func(attempt int) error) error {

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryInterval
	b.MaxElapsedTime = 0

	retries := s.cfg.MaxUpdateRetries
	if retries < 0 {
		retries = 0
	}

	attempt := 0

	return backoff.Retry(func() error {
		err := fn(attempt)
		attempt++
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx))
}

// updateError keeps version conflicts retryable and makes every other failure permanent.
func (s *cartService) updateError(ctx context.Context, op, cartID string, err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		metrics.VersionConflict(op)
		middleware.LoggerFromContext(ctx).Debug("Cart version conflict, retrying",
			slog.String("operation", op),
			slog.String("cartId", cartID))

		return err
	}

	return backoff.Permanent(s.storeError(op, cartID, err))
}

func (s *cartService) conflictError(op, cartID string, err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return appErrors.ConflictError("Cart was modified concurrently, please retry").
			WithDetail(fmt.Sprintf("%s: cart %s", op, cartID)).
			WithError(err)
	}

	return err
}

func (s *cartService) storeError(op, id string, err error) error {
	if _, ok := appErrors.IsAppError(err); ok {
		return err
	}

	if errors.Is(err, repository.ErrCartNotFound) {
		return appErrors.NotFoundError("Cart not found").
			WithDetail(fmt.Sprintf("%s: %s", op, id)).
			WithError(err)
	}

	return appErrors.DatabaseError(fmt.Sprintf("Failed to %s", op)).
		WithDetail(fmt.Sprintf("%s: %s", op, id)).
		WithError(err)
}

func (s *cartService) publishUpdated(ctx context.Context, cart *models.Cart) {
	if err := s.publisher.CartUpdated(ctx, cart); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to publish cart updated event",
			slog.String("cartId", cart.ID),
			slog.String("error", err.Error()))
	}
}

// mergeItems keeps the user's items in their order, adding guest quantities to matching
// products, then appends guest-only items in guest order.
func mergeItems(userItems, guestItems []models.CartItem) []models.CartItem {

	merged := make([]models.CartItem, 0, len(userItems)+len(guestItems))
	merged = append(merged, userItems...)

	index := make(map[string]int, len(merged))
	for i, item := range merged {
		index[item.ProductID] = i
	}

	for _, item := range guestItems {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}

		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}
