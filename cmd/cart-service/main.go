package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/cart-service/internal/api/handlers"
	"github.com/aaravmahajanofficial/cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/cart-service/internal/config"
	"github.com/aaravmahajanofficial/cart-service/internal/events"
	"github.com/aaravmahajanofficial/cart-service/internal/health"
	"github.com/aaravmahajanofficial/cart-service/internal/metrics"
	repository "github.com/aaravmahajanofficial/cart-service/internal/repositories"
	service "github.com/aaravmahajanofficial/cart-service/internal/services"
	"github.com/aaravmahajanofficial/cart-service/internal/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("❌ Cart service stopped with an error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run wires the service and serves until ctx is cancelled. Everything it opens is
// closed before it returns, on success and on every error path.
func run(ctx context.Context, cfg *config.Config) error {

	shutdownTracing, err := tracing.Init(ctx, cfg.Otel, cfg.Env)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdownTracing(flushCtx); err != nil {
			slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
		}
	}()

	// Storage setup
	stores, err := repository.NewStores(cfg)
	if err != nil {
		return fmt.Errorf("opening %s cart store: %w", cfg.Storage.Driver, err)
	}

	defer func() {
		if err := stores.Close(); err != nil {
			slog.Error("⚠️ Error closing storage connections", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Storage connections closed")
		}
	}()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka)
		slog.Info("cart events enabled", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("topicPrefix", cfg.Kafka.TopicPrefix))
	}

	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("⚠️ Error closing event publisher", slog.String("error", err.Error()))
		}
	}()

	healthChecker, err := health.NewHealthHandler(cfg)
	if err != nil {
		return fmt.Errorf("creating health checks: %w", err)
	}

	cartService := service.NewCartService(stores.Carts, stores.Sessions, publisher, cfg.Cart)
	cartHandler := handlers.NewCartHandler(cartService)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("driver", cfg.Storage.Driver), slog.String("version", health.Version))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.Handle("GET /health", healthChecker.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())
	cartHandler.RegisterRoutes(routerMux, authMiddleware.Authenticate)

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = metrics.Middleware(handler)
	handler = otelhttp.NewHandler(handler, health.ComponentName)

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	slog.Info("✅ Server shut down gracefully. All connections closed.")
	return nil
}
