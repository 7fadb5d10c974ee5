package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/cart-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// Stores bundles the repositories selected by the storage driver together
// with the underlying connections, which stay nil for drivers that do not use them.
type Stores struct {
	Carts    CartRepository
	Sessions GuestSessionRepository
	DB       *sql.DB
	Redis    *redis.Client
}

func NewStores(cfg *config.Config) (*Stores, error) {

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := NewPostgres(cfg)
		if err != nil {
			return nil, err
		}

		slog.Info("Using postgres cart storage")
		return &Stores{
			Carts:    NewCartRepo(db),
			Sessions: NewGuestSessionRepo(db),
			DB:       db,
		}, nil

	case config.DriverRedis:
		client, err := NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}

		slog.Info("Using redis cart storage")
		return &Stores{
			Carts:    NewRedisCartRepo(client),
			Sessions: NewRedisGuestSessionRepo(client),
			Redis:    client,
		}, nil

	case config.DriverMemory:
		store := NewMemoryStore()

		slog.Warn("Using in-memory cart storage, carts will not survive a restart")
		return &Stores{
			Carts:    store.Carts(),
			Sessions: store.Sessions(),
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func (s *Stores) Close() error {
	var errs []error

	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}

	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}

	return errors.Join(errs...)
}
