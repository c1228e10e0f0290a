// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// MinSecretKeyLength is the minimum acceptable JWT secret length in bytes.
const MinSecretKeyLength = 32

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL). Optional: when empty the service runs on the
	// seeded in-memory store.
	DatabaseURL string `env:"DATABASE_URL"`

	// Cache / notification transport (Redis). Optional: when empty the
	// notification transport is a no-op and login rate limiting is disabled.
	RedisURL string `env:"REDIS_URL"`

	// JWT settings. An absent or short secret disables token issuance;
	// the rest of the service still starts.
	JWTSecretKey         string `env:"JWT_SECRET_KEY"`
	JWTIssuer            string `env:"JWT_ISSUER" envDefault:"devnexus"`
	JWTAudience          string `env:"JWT_AUDIENCE" envDefault:"devnexus-clients"`
	JWTExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES" envDefault:"60"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Login rate limiting (per client IP)
	RateLimitLoginEnabled bool `env:"RATE_LIMIT_LOGIN_ENABLED" envDefault:"true"`
	RateLimitLoginRPM     int  `env:"RATE_LIMIT_LOGIN_RPM" envDefault:"10"`
	RateLimitLoginBurst   int  `env:"RATE_LIMIT_LOGIN_BURST" envDefault:"5"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TokenTTL returns the configured access token lifetime.
func (c *Config) TokenTTL() time.Duration {
	minutes := c.JWTExpirationMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// HasUsableSecret reports whether the JWT secret meets the minimum length.
func (c *Config) HasUsableSecret() bool {
	return len(c.JWTSecretKey) >= MinSecretKeyLength
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
