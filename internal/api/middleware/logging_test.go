package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aaravmahajanofficial/cart-service/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureDefaultLogger routes slog.Default into a buffer for the duration of the test.
func captureDefaultLogger(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	return &buf
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))

	return entry
}

func TestLogging(t *testing.T) {
	t.Run("Propagates the request id", func(t *testing.T) {
		// Arrange
		buf := captureDefaultLogger(t)
		var fromCtx *slog.Logger
		handler := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromCtx = middleware.LoggerFromContext(r.Context())
			w.WriteHeader(http.StatusCreated)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rr := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
		require.NotNil(t, fromCtx)
		assert.NotEqual(t, slog.Default(), fromCtx)
		assert.Equal(t, "req-123", lastLogLine(t, buf)["correlation_id"])
	})

	t.Run("Replaces a missing or oversized request id", func(t *testing.T) {
		// Arrange
		captureDefaultLogger(t)
		handler := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
		rr := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rr, req)

		// Assert
		id := rr.Header().Get("X-Request-ID")
		assert.NotEmpty(t, id)
		assert.LessOrEqual(t, len(id), 64)
	})

	t.Run("Access line uses the route template and records the body size", func(t *testing.T) {
		// Arrange
		buf := captureDefaultLogger(t)
		handler := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true}`))
		}))

		// Act
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cart/abc/items", nil))

		// Assert
		entry := lastLogLine(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "/api/v1/cart/{cartId}/items", entry["http_route"])
		assert.Equal(t, "/api/v1/cart/abc/items", entry["http_path"])
		assert.InDelta(t, float64(http.StatusOK), entry["http_status"], 0)
		assert.InDelta(t, float64(len(`{"success":true}`)), entry["response_bytes"], 0)
	})

	t.Run("Level follows the response status", func(t *testing.T) {
		tests := []struct {
			name   string
			path   string
			status int
			level  string
		}{
			{"Server error", "/api/v1/cart", http.StatusInternalServerError, "ERROR"},
			{"Conflict", "/api/v1/cart/abc/items", http.StatusConflict, "WARN"},
			{"Health check", "/health", http.StatusOK, "DEBUG"},
			{"Metrics scrape", "/metrics", http.StatusOK, "DEBUG"},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				// Arrange
				buf := captureDefaultLogger(t)
				handler := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
				}))

				// Act
				handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))

				// Assert
				assert.Equal(t, tc.level, lastLogLine(t, buf)["level"])
			})
		}
	})

	t.Run("Falls back to the default logger", func(t *testing.T) {
		assert.Equal(t, slog.Default(), middleware.LoggerFromContext(t.Context()))
	})
}
