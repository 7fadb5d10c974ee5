package response

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/cart-service/internal/errors"
	"github.com/go-playground/validator/v10"
)

type APIResponse struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// validationMessages maps validator tags to messages; %[1]s is the json field name, %[2]s the tag param.
var validationMessages = map[string]string{
	"required": "Field %[1]s is required",
	"min":      "Field %[1]s must be at least %[2]s",
	"max":      "Field %[1]s must be at most %[2]s",
	"gte":      "Field %[1]s must be greater than or equal to %[2]s",
	"gt":       "Field %[1]s must be greater than %[2]s",
}

func WriteJson(w http.ResponseWriter, statusCode int, data any) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone by now, so the client only sees a truncated body
		slog.Error("Failed to encode response body", slog.Int("http_status", statusCode), slog.Any("error", err))
		return err
	}

	return nil
}

func Success(w http.ResponseWriter, statusCode int, data any) {
	WriteJson(w, statusCode, APIResponse{Success: true, Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes err as an error envelope. Details are only exposed for client errors.
func Error(w http.ResponseWriter, err error) {

	appErr := toAppError(err)

	body := &ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
	}

	if appErr.Detail != "" && appErr.StatusCode < http.StatusInternalServerError {
		body.Details = []string{appErr.Detail}
	}

	WriteJson(w, appErr.StatusCode, APIResponse{Success: false, Error: body})
}

func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.IsAppError(err); ok {
		return appErr
	}

	if stdErrors.Is(err, context.DeadlineExceeded) {
		return errors.TimeoutError("The request timed out")
	}

	return errors.InternalError("An unexpected error occurred")
}

func ValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {

	details := make([]string, 0, len(errs))

	for _, fieldErr := range errs {
		format, ok := validationMessages[fieldErr.Tag()]
		if !ok {
			details = append(details, fmt.Sprintf("Field %s is invalid: %s=%s", fieldErr.Field(), fieldErr.Tag(), fieldErr.Param()))
			continue
		}

		details = append(details, fmt.Sprintf(format, fieldErr.Field(), fieldErr.Param()))
	}

	WriteJson(w, http.StatusBadRequest, APIResponse{
		Success: false,
		Error: &ErrorResponse{
			Code:    errors.ErrCodeValidation,
			Message: "Validation failed",
			Details: details,
		},
	})
}
