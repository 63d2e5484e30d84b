// Package config loads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"recipebox/internal/access"
)

// Config holds all application configuration.
type Config struct {
	AppEnv  string
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	// JWTSecret signs session tokens. It has no default and must never be logged.
	JWTSecret      string
	TokenTTL       time.Duration
	PasswordHasher string

	RecipePolicy access.Policy

	CORSAllowedOrigins []string

	// RabbitMQURL is optional; event publishing is disabled when empty.
	RabbitMQURL string

	LogLevel  string
	LogFormat string
}

// ErrMissingSecret is returned when JWT_SECRET is not set.
var ErrMissingSecret = errors.New("JWT_SECRET is required")

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "recipebox.db")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("PASSWORD_HASHER", "bcrypt")
	v.SetDefault("RECIPE_POLICY", "owner")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8081,http://localhost:3000,http://localhost:5000")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:             strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		AppPort:            normalizePort(v.GetString("APP_PORT")),
		DatabaseDriver:     strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER"))),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		PasswordHasher:     strings.ToLower(strings.TrimSpace(v.GetString("PASSWORD_HASHER"))),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RabbitMQURL:        strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
	}

	policy, err := access.ParsePolicy(v.GetString("RECIPE_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.RecipePolicy = policy

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.PasswordHasher)
	}
	return nil
}

// normalizePort accepts both "8080" and ":8080".
func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
