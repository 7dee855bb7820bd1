package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/enigmahunt/enigmahunt/internal/dependencies/clock"
	"github.com/enigmahunt/enigmahunt/internal/dependencies/random"
	"github.com/enigmahunt/enigmahunt/internal/push"
	"github.com/enigmahunt/enigmahunt/internal/services/auth"
	"github.com/enigmahunt/enigmahunt/internal/services/catalog"
	"github.com/enigmahunt/enigmahunt/internal/services/notify"
	"github.com/enigmahunt/enigmahunt/internal/services/progression"
	"github.com/enigmahunt/enigmahunt/internal/services/ranking"
	"github.com/enigmahunt/enigmahunt/internal/storage"
	"github.com/enigmahunt/enigmahunt/internal/storage/memory"
	redisstorage "github.com/enigmahunt/enigmahunt/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService           *auth.Service
	CatalogService        *catalog.Service
	RankingService        *ranking.Service
	NotifyService         *notify.Service
	ProgressionController *progression.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PushURL and PushServerKey configure the push provider.
	// An empty PushURL disables push delivery.
	PushURL       string
	PushServerKey string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	var sender notify.Sender = push.Noop{}
	if cfg.PushURL != "" {
		sender = push.NewClient(cfg.PushURL, cfg.PushServerKey)
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	return newWithDependencies(store, clk, rnd, sender, authCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, sender notify.Sender, authCfg auth.Config, logger *slog.Logger) *App {
	// Create services
	authService := auth.New(store, clk, rnd, authCfg, logger)
	catalogService := catalog.New(store, clk, logger)
	rankingService := ranking.New(store, logger)
	notifyService := notify.New(store, sender, logger)
	progressionController := progression.NewController(store, clk, notifyService, logger)

	return &App{
		Storage:               store,
		Clock:                 clk,
		Random:                rnd,
		AuthService:           authService,
		CatalogService:        catalogService,
		RankingService:        rankingService,
		NotifyService:         notifyService,
		ProgressionController: progressionController,
	}
}
