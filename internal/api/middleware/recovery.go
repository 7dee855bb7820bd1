package middleware

import (
	"log/slog"
	"net/http"

	"github.com/enigmahunt/enigmahunt/internal/api/apierr"
	"github.com/enigmahunt/enigmahunt/internal/middleware"
)

// Recovery creates panic recovery middleware that answers with the
// API's JSON internal-error body instead of a bare 500
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
