package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/enigmahunt/enigmahunt/internal/api/apierr"
	"github.com/enigmahunt/enigmahunt/internal/api/handler"
	"github.com/enigmahunt/enigmahunt/internal/api/middleware"
	"github.com/enigmahunt/enigmahunt/internal/services/auth"
	"github.com/enigmahunt/enigmahunt/internal/services/catalog"
	"github.com/enigmahunt/enigmahunt/internal/services/progression"
	"github.com/enigmahunt/enigmahunt/internal/services/ranking"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger                *slog.Logger
	AuthService           *auth.Service
	ProgressionController progression.ControllerInterface
	CatalogService        *catalog.Service
	RankingService        *ranking.Service

	CORSOrigins []string

	// RateLimitRPS of zero disables rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	eventHandler := handler.NewEventHandler(cfg.CatalogService, cfg.RankingService)
	enigmaHandler := handler.NewEnigmaHandler(cfg.ProgressionController)
	adminHandler := handler.NewAdminHandler(cfg.CatalogService, cfg.RankingService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	adminMiddleware := middleware.RequireAdmin()
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.RateLimitRPS > 0 {
		api.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))
	}

	// Player routes (no auth required for registering/logging in)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/me/push-token", playerHandler.SetPushToken).Methods(http.MethodPut)

	// Event routes (all require auth)
	events := api.PathPrefix("/events").Subrouter()
	events.Use(authMiddleware)
	events.HandleFunc("", eventHandler.List).Methods(http.MethodGet)
	events.HandleFunc("/{event_id}", eventHandler.Get).Methods(http.MethodGet)
	events.HandleFunc("/{event_id}/ranking", eventHandler.Ranking).Methods(http.MethodGet)

	// Gameplay endpoint: one POST route, dispatched on the action field
	events.HandleFunc("/{event_id}/enigma", enigmaHandler.Action).Methods(http.MethodPost)

	// Admin routes (require auth plus the admin flag)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware)
	admin.Use(adminMiddleware)
	admin.HandleFunc("/dashboard", adminHandler.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/events", adminHandler.CreateEvent).Methods(http.MethodPost)
	admin.HandleFunc("/events/{event_id}/status", adminHandler.SetEventStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/events/{event_id}/phases", adminHandler.AddPhase).Methods(http.MethodPost)
	admin.HandleFunc("/events/{event_id}/phases/{phase_order}/enigmas", adminHandler.AddEnigma).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(r)
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				apierr.WriteError(w, apierr.NewRateLimitedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
