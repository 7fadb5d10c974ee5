package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/cart-service/internal/config"
	"github.com/aaravmahajanofficial/cart-service/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix       = "cart"
	cartOwnerIndexKey   = "cart:owner"
	guestSessionKeyBase = "guest_session"
)

func cartKey(cartID string) string {
	return cartKeyPrefix + ":" + cartID
}

func ownerIndexKey(kind models.OwnerKind, ownerRef string) string {
	return cartOwnerIndexKey + ":" + string(kind) + ":" + ownerRef
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	redisURL := cfg.RedisConnect.GetDSN()
	slog.Info("Connecting to Redis", slog.String("url", fmt.Sprintf("redis://%s:<password>@%s:%s", cfg.RedisConnect.Username, cfg.RedisConnect.Host, cfg.RedisConnect.Port)))

	// Parse the Redis URL
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DB = cfg.RedisConnect.DB

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test the connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("✅ Successfully connected to Redis")
	return client, nil

}

// redisCartRepository stores each cart as a JSON document under cart:<id>
// plus one owner index key per cart pointing back at the id.
type redisCartRepository struct {
	client *redis.Client
}

func NewRedisCartRepo(client *redis.Client) CartRepository {
	return &redisCartRepository{client: client}
}

func (r *redisCartRepository) Create(ctx context.Context, kind models.OwnerKind, ownerRef string) (*models.Cart, error) {

	if !kind.Valid() {
		return nil, fmt.Errorf("invalid owner kind %q", kind)
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

	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart: %w", err)
	}

	indexKey := ownerIndexKey(kind, ownerRef)

	// document and index land in one MULTI, so an index never exists without its cart
	var claim *redis.BoolCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, cartKey(cart.ID), data, 0)
		claim = pipe.SetNX(ctx, indexKey, cart.ID, 0)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cart %s in redis: %w", cart.ID, err)
	}

	if !claim.Val() {
		// the owner already has a cart; drop the unreachable document
		if err := r.client.Del(ctx, cartKey(cart.ID)).Err(); err != nil {
			slog.Warn("Failed to remove unclaimed cart document", slog.String("cartId", cart.ID), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: %s %s", ErrCartExists, kind, ownerRef)
	}

	return cart, nil
}

func (r *redisCartRepository) FindByID(ctx context.Context, cartID string) (*models.Cart, error) {
	return r.get(ctx, r.client, cartID)
}

func (r *redisCartRepository) FindByOwnerID(ctx context.Context, ownerID string) (*models.Cart, error) {
	return r.findByOwner(ctx, models.OwnerKindRegistered, ownerID)
}

func (r *redisCartRepository) FindByGuestID(ctx context.Context, guestID string) (*models.Cart, error) {
	return r.findByOwner(ctx, models.OwnerKindGuest, guestID)
}

func (r *redisCartRepository) Update(ctx context.Context, cart *models.Cart) (*models.Cart, error) {

	key := cartKey(cart.ID)

	var updated *models.Cart

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {

		stored, err := r.get(ctx, tx, cart.ID)
		if err != nil {
			return err
		}

		if stored.Version != cart.Version {
			return fmt.Errorf("%w: cart %s at version %d, stored %d", ErrVersionConflict, cart.ID, cart.Version, stored.Version)
		}

		next := stored.Clone()
		next.Items = cart.Clone().Items
		next.Version = stored.Version + 1
		next.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = next
		return nil

	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("%w: cart %s changed during update", ErrVersionConflict, cart.ID)
	}

	if err != nil {
		if errors.Is(err, ErrCartNotFound) || errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update cart %s in redis: %w", cart.ID, err)
	}

	return updated, nil
}

func (r *redisCartRepository) Delete(ctx context.Context, cartID string) error {

	cart, err := r.get(ctx, r.client, cartID)
	if errors.Is(err, ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	indexKey := ownerIndexKey(cart.OwnerKind, cart.OwnerRef())

	indexed, err := r.client.Get(ctx, indexKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get key %s from redis: %w", indexKey, err)
	}

	keys := []string{cartKey(cartID)}
	if indexed == cartID {
		keys = append(keys, indexKey)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cart %s from redis: %w", cartID, err)
	}

	return nil
}

func (r *redisCartRepository) findByOwner(ctx context.Context, kind models.OwnerKind, ownerRef string) (*models.Cart, error) {

	indexKey := ownerIndexKey(kind, ownerRef)

	cartID, err := r.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get key %s from redis: %w", indexKey, err)
	}

	cart, err := r.get(ctx, r.client, cartID)
	if errors.Is(err, ErrCartNotFound) {
		if err := r.releaseIndex(ctx, indexKey, cartID); err != nil {
			return nil, err
		}
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	if cart.OwnerKind != kind || cart.OwnerRef() != ownerRef {
		return nil, ErrCartNotFound
	}

	return cart, nil
}

// releaseIndex removes an owner index entry whose cart document is gone, but only while
// it still points at that id and the document is still missing.
func (r *redisCartRepository) releaseIndex(ctx context.Context, indexKey, cartID string) error {

	released := false

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {

		indexed, err := tx.Get(ctx, indexKey).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		exists, err := tx.Exists(ctx, cartKey(cartID)).Result()
		if err != nil {
			return err
		}

		if indexed != cartID || exists > 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, indexKey)
			return nil
		})
		released = err == nil
		return err

	}, indexKey, cartKey(cartID))

	// someone else touched the index first, their write wins
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to release owner index %s in redis: %w", indexKey, err)
	}

	if released {
		slog.Warn("Released dangling cart owner index", slog.String("key", indexKey), slog.String("cartId", cartID))
	}
	return nil
}

func (r *redisCartRepository) get(ctx context.Context, cmd redis.Cmdable, cartID string) (*models.Cart, error) {

	key := cartKey(cartID)

	data, err := cmd.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart data for key %s: %w", key, err)
	}

	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	return &cart, nil
}
