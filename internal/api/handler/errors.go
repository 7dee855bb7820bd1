package handler

import (
	"net/http"

	"github.com/enigmahunt/enigmahunt/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest       = apierr.CodeInvalidRequest
	CodeUnauthorized         = apierr.CodeUnauthorized
	CodeForbidden            = apierr.CodeForbidden
	CodePlayerNotFound       = apierr.CodePlayerNotFound
	CodeEventNotFound        = apierr.CodeEventNotFound
	CodePhaseNotFound        = apierr.CodePhaseNotFound
	CodeEnigmaNotFound       = apierr.CodeEnigmaNotFound
	CodeEventNotOpen         = apierr.CodeEventNotOpen
	CodeInvalidEventStatus   = apierr.CodeInvalidEventStatus
	CodeCodeRequired         = apierr.CodeCodeRequired
	CodePhaseNotCurrent      = apierr.CodePhaseNotCurrent
	CodeHintNotForPhase      = apierr.CodeHintNotForPhase
	CodeHintNotAvailable     = apierr.CodeHintNotAvailable
	CodeHintAlreadyPurchased = apierr.CodeHintAlreadyPurchased
	CodeInsufficientBalance  = apierr.CodeInsufficientBalance
	CodeConflict             = apierr.CodeConflict
	CodeUsernameExists       = apierr.CodeUsernameExists
	CodeInvalidCredentials   = apierr.CodeInvalidCredentials
	CodeInternalError        = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
