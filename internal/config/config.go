package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the server, loaded from
// environment variables with EH_-prefixed names.
type Config struct {
	Host string `env:"EH_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"EH_PORT" envDefault:"8080"`

	// StorageType selects the backing store: "memory" or "redis"
	StorageType string `env:"EH_STORAGE" envDefault:"memory"`

	RedisURL          string `env:"EH_REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPoolSize     int    `env:"EH_REDIS_POOL_SIZE" envDefault:"10"`
	RedisMinIdleConns int    `env:"EH_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	RedisMaxTxRetries int    `env:"EH_REDIS_MAX_TX_RETRIES" envDefault:"10"`

	SessionDuration time.Duration `env:"EH_SESSION_DURATION" envDefault:"24h"`

	// InitialBalance is the currency granted to newly registered players
	InitialBalance int64 `env:"EH_INITIAL_BALANCE" envDefault:"0"`

	// PushURL is the push provider endpoint. Empty disables push delivery.
	PushURL       string `env:"EH_PUSH_URL"`
	PushServerKey string `env:"EH_PUSH_SERVER_KEY"`

	CORSOrigins []string `env:"EH_CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// RateLimitRPS is the per-client request rate for the public API.
	// Zero disables rate limiting.
	RateLimitRPS   float64 `env:"EH_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"EH_RATE_LIMIT_BURST" envDefault:"40"`

	LogLevel string `env:"EH_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.StorageType != "memory" && cfg.StorageType != "redis" {
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}

	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
