// Package config handles loading and validating runtime configuration for the Scorekeeper API.
// Configuration values (like the database URL and API port) are read from environment variables
// rather than being hardcoded, so the same binary can run in dev, staging, and production
// with only the environment changing.
package config

import (
	"fmt"

	// env parses environment variables into a struct using `env:"..."` field tags,
	// including defaults (envDefault) and required checks.
	"github.com/caarlos0/env/v11"
	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	// Handy in development; in production the platform sets real environment variables.
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`                        // TCP port the HTTP server listens on
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`                // PostgreSQL connection string
	JWTSecret     string `env:"JWT_SECRET,required,notEmpty"`                  // HMAC key used to verify bearer tokens
	Env           string `env:"ENV" envDefault:"development"`                  // "development", "staging", or "production"
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`                   // zerolog level name: debug, info, warn, error
	MigrationsURL string `env:"MIGRATIONS_URL" envDefault:"file://migrations"` // Where golang-migrate finds the .sql files
	StreamBuffer  int    `env:"STREAM_BUFFER" envDefault:"64"`                 // Per-subscriber buffer for live match events
}

// Load reads configuration from the environment (after an optional .env file) and
// returns a populated Config, or an error naming the missing or malformed variable.
func Load() (*Config, error) {
	// A missing .env file is fine: real environment variables may already be set.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StreamBuffer < 1 {
		return nil, fmt.Errorf("STREAM_BUFFER must be positive, got %d", cfg.StreamBuffer)
	}
	return cfg, nil
}

// IsDevelopment reports whether the server runs with developer conveniences
// (console logs instead of JSON).
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
