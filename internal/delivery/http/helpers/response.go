package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eventcalendar/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeValidation       = "validation_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeCapacityExceeded = "capacity_exceeded"
	ErrCodeConflict         = "conflict"
	ErrCodeStorageFailure   = "storage_failure"
	ErrCodeInternalError    = "internal_error"
)

// APIResponse is the standardized envelope for all JSON responses.
// On success: Success is true and Data is set. On failure: Success is false and
// Code and Message describe the error.
// swagger:model APIResponse
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes a successful APIResponse carrying data.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes a failed APIResponse with the given code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Code: code, Message: message})
}

// WriteDomainError maps a service error onto the error envelope. Unauthorized
// becomes 401 for guests and 403 for signed-in callers lacking the role.
// Storage and unexpected errors are logged and reported with a generic message.
func WriteDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, claims domain.Claims, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeValidation, ve.Error())
	case errors.Is(err, domain.ErrValidation):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrUserNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, domain.ErrInvalidCredential):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrUnauthorized):
		if claims.IsGuest() {
			WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "please log in to continue")
			return
		}
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "you are not allowed to do that")
	case errors.Is(err, domain.ErrCapacityExceeded):
		WriteJSONError(w, http.StatusConflict, ErrCodeCapacityExceeded, "this event is full")
	case errors.Is(err, domain.ErrDuplicateUser):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, domain.ErrDuplicateUser.Error())
	case errors.Is(err, domain.ErrStorage):
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeStorageFailure, "storage failure, please retry later")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}
