// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
)

// Config holds all server configuration.
type Config struct {
	Port              int
	DBPath            string
	JWTSecret         string
	TokenTTL          time.Duration
	SettlementEpsilon decimal.Decimal
	DefaultCurrency   string
	LogLevel          string
	LogFormat         string
}

const devSecret = "dev-secret-change-me"

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, f := range filenames {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "./data/tripsplit.db"),
		JWTSecret:       getEnv("JWT_SECRET", devSecret),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	cfg.SettlementEpsilon = calculator.DefaultEpsilon
	if v := os.Getenv("SETTLEMENT_EPSILON"); v != "" {
		eps, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SETTLEMENT_EPSILON: %w", err)
		}
		if eps.IsNegative() {
			return nil, fmt.Errorf("SETTLEMENT_EPSILON must not be negative, got %s", eps)
		}
		cfg.SettlementEpsilon = eps
	}

	return cfg, nil
}

// UsesDevSecret reports whether the built-in development JWT secret is in use.
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == devSecret
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
