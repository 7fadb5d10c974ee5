package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	appErrors "github.com/aaravmahajanofficial/cart-service/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *appErrors.AppError
		code       string
		statusCode int
	}{
		{"Validation", appErrors.ValidationError("bad"), appErrors.ErrCodeValidation, http.StatusBadRequest},
		{"BadRequest", appErrors.BadRequestError("bad"), appErrors.ErrCodeBadRequest, http.StatusBadRequest},
		{"NotFound", appErrors.NotFoundError("missing"), appErrors.ErrCodeNotFound, http.StatusNotFound},
		{"OwnershipMismatch", appErrors.OwnershipMismatchError("not yours"), appErrors.ErrCodeOwnershipMismatch, http.StatusBadRequest},
		{"Unauthorized", appErrors.UnauthorizedError("who"), appErrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{"Forbidden", appErrors.ForbiddenError("no"), appErrors.ErrCodeForbidden, http.StatusForbidden},
		{"Conflict", appErrors.ConflictError("again"), appErrors.ErrCodeConflict, http.StatusConflict},
		{"Internal", appErrors.InternalError("boom"), appErrors.ErrCodeInternal, http.StatusInternalServerError},
		{"Database", appErrors.DatabaseError("db"), appErrors.ErrCodeDatabaseError, http.StatusInternalServerError},
		{"Timeout", appErrors.TimeoutError("slow"), appErrors.ErrCodeTimeout, http.StatusGatewayTimeout},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.statusCode, tc.err.StatusCode)
			assert.Equal(t, tc.err.Message, tc.err.Error())
		})
	}
}

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	appErr := appErrors.DatabaseError("Failed to update cart").WithError(cause).WithDetail("cart c-1")

	wrapped := fmt.Errorf("update: %w", appErr)

	assert.ErrorIs(t, wrapped, cause)

	got, ok := appErrors.IsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "cart c-1", got.Detail)
	assert.True(t, appErrors.HasCode(wrapped, appErrors.ErrCodeDatabaseError))
	assert.False(t, appErrors.HasCode(cause, appErrors.ErrCodeDatabaseError))
}

func TestAddValidationError(t *testing.T) {
	err := appErrors.AddValidationError("quantity", "must be at least 1")

	assert.Equal(t, appErrors.ErrCodeValidation, err.Code)
	assert.Equal(t, "Invalid field 'quantity': must be at least 1", err.Message)
}
