package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the full application configuration
type Config struct {
	Server   ServerConfig   // HTTP server settings
	Database DatabaseConfig // database connection settings
	JWT      JWTConfig      // JWT auth settings
	Razorpay RazorpayConfig // payment gateway credentials
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"digichit"`
	Password string `envconfig:"DB_PASSWORD" default:"digichit_pass"`
	Name     string `envconfig:"DB_NAME" default:"digichit"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`
}

// JWTConfig holds token issuing settings
type JWTConfig struct {
	Secret          string `envconfig:"JWT_SECRET" required:"true"`
	ExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"168"`
}

// RazorpayConfig holds the payment gateway API credentials.
// The gateway is optional for local development; the payment endpoints
// return an error when the key is unset.
type RazorpayConfig struct {
	KeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`
}

// GetExpiration returns the token lifetime as a time.Duration
func (j JWTConfig) GetExpiration() time.Duration {
	return time.Duration(j.ExpirationHours) * time.Hour
}

// DSN returns the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
