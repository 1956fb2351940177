// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the service reads from its environment.
// JWTSecret has no default: a missing signing secret is a fatal startup
// condition, never a per-request error.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"Identity Server"`
	Env      string `env:"ENV" envDefault:"DEV"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`

	StoreTimeout   time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	ReaperInterval time.Duration `env:"REAPER_INTERVAL" envDefault:"15m"`
}

// Load parses the environment and validates the invariants the rest of the
// service relies on.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("REFRESH_TOKEN_TTL must be positive")
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	port := c.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}
