package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeEventNotFound        = "EVENT_NOT_FOUND"
	CodePhaseNotFound        = "PHASE_NOT_FOUND"
	CodeEnigmaNotFound       = "ENIGMA_NOT_FOUND"
	CodeEventNotOpen         = "EVENT_NOT_OPEN"
	CodeInvalidEventStatus   = "INVALID_EVENT_STATUS"
	CodeCodeRequired         = "CODE_REQUIRED"
	CodePhaseNotCurrent      = "PHASE_NOT_CURRENT"
	CodeHintNotForPhase      = "HINT_NOT_FOR_PHASE"
	CodeHintNotAvailable     = "HINT_NOT_AVAILABLE"
	CodeHintAlreadyPurchased = "HINT_ALREADY_PURCHASED"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeConflict             = "CONFLICT"
	CodeUsernameExists       = "USERNAME_EXISTS"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrEventNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeEventNotFound, "Event not found"}}
	case errors.Is(err, model.ErrPhaseNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePhaseNotFound, "Phase not found"}}
	case errors.Is(err, model.ErrEnigmaNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeEnigmaNotFound, "Enigma not found"}}
	case errors.Is(err, model.ErrEventNotOpen):
		return &httpError{http.StatusConflict, APIError{CodeEventNotOpen, "Event is not open"}}
	case errors.Is(err, model.ErrInvalidEventStatus):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidEventStatus, "Invalid event status"}}
	case errors.Is(err, model.ErrCodeRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeCodeRequired, "A code is required"}}
	case errors.Is(err, model.ErrPhaseNotCurrent):
		return &httpError{http.StatusConflict, APIError{CodePhaseNotCurrent, "Phase is not the player's current phase"}}
	case errors.Is(err, model.ErrHintNotForPhase):
		return &httpError{http.StatusConflict, APIError{CodeHintNotForPhase, "No hint is sold for this phase"}}
	case errors.Is(err, model.ErrHintNotAvailable):
		return &httpError{http.StatusNotFound, APIError{CodeHintNotAvailable, "No hint available for the current enigma"}}
	case errors.Is(err, model.ErrHintAlreadyPurchased):
		return &httpError{http.StatusConflict, APIError{CodeHintAlreadyPurchased, "Hint already purchased"}}
	case errors.Is(err, model.ErrInsufficientBalance):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientBalance, "Insufficient balance"}}
	case errors.Is(err, model.ErrTxConflict):
		return &httpError{http.StatusInternalServerError, APIError{CodeConflict, "Storage contention, try again"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Admin access required"}}
}

// NewRateLimitedError creates a rate limited error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
