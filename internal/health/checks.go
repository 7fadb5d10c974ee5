package health

import (
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/cart-service/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

const (
	ComponentName = "cart-service"
	Version       = "1.0.0"
)

// NewHealthHandler builds the /health checker for the configured storage driver.
// The memory driver has no external dependency to check.
func NewHealthHandler(cfg *config.Config) (*health.Health, error) {

	opts := []health.Option{
		health.WithComponent(health.Component{
			Name:    ComponentName,
			Version: Version,
		}),
		health.WithSystemInfo(),
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		opts = append(opts, health.WithChecks(health.Config{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		}))
	case config.DriverRedis:
		opts = append(opts, health.WithChecks(health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		}))
	}

	h, err := health.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
