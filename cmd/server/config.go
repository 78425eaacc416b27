package main

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds the server configuration, read from environment variables
// (a .env file is honored via godotenv).
type Config struct {
	Port          int
	DBPath        string
	JWTSecret     string
	TokenDuration time.Duration
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.TokenDuration, validation.Required, validation.Min(time.Minute)),
	)
}

// Address returns the HTTP listen address.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// LoadConfig reads the configuration from the environment.
//
//	PORT            listen port (default 8080)
//	DB_PATH         SQLite database path (default ./data/kharcha.db)
//	JWT_SECRET      token signing key, at least 16 characters (required)
//	TOKEN_DURATION  session token lifetime (default 24h)
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DBPath:        getEnv("DB_PATH", "./data/kharcha.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Port:          8080,
		TokenDuration: 24 * time.Hour,
	}

	if port := os.Getenv("PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &cfg.Port); err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
	}
	if d := os.Getenv("TOKEN_DURATION"); d != "" {
		duration, err := time.ParseDuration(d)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_DURATION %q: %w", d, err)
		}
		cfg.TokenDuration = duration
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
