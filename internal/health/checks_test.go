package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/cart-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHealthHandler(t *testing.T) {
	t.Run("Memory driver reports ok", func(t *testing.T) {
		// Arrange
		cfg := &config.Config{Storage: config.Storage{Driver: config.DriverMemory}}

		// Act
		h, err := NewHealthHandler(cfg)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		h.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			Status    string `json:"status"`
			Component struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"component"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "OK", body.Status)
		assert.Equal(t, ComponentName, body.Component.Name)
		assert.Equal(t, Version, body.Component.Version)
	})

	t.Run("Redis driver reports unavailable dependency", func(t *testing.T) {
		// Arrange
		cfg := &config.Config{
			Storage:      config.Storage{Driver: config.DriverRedis},
			RedisConnect: config.RedisConnect{Host: "127.0.0.1", Port: "1"},
		}

		// Act
		h, err := NewHealthHandler(cfg)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		h.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		// Assert
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
