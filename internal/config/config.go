package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the compress service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"compress-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"COMPRESS_API_PORT" envDefault:"8480"`
	LogLevel        string        `env:"COMPRESS_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DBPostgresqlWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Media service credentials. The API secret signs upload credentials and
	// must never be exposed to clients.
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME,notEmpty"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY,notEmpty"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET,notEmpty"`

	// CORS
	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`

	// Authentication
	AuthIssuer   string `env:"AUTH_ISSUER"`
	AuthAudience string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL  string `env:"AUTH_JWKS_URL,notEmpty"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.CloudinaryCloudName = strings.TrimSpace(cfg.CloudinaryCloudName)
	cfg.CloudinaryAPIKey = strings.TrimSpace(cfg.CloudinaryAPIKey)
	cfg.CloudinaryAPISecret = strings.TrimSpace(cfg.CloudinaryAPISecret)
	cfg.AuthJWKSURL = strings.TrimSpace(cfg.AuthJWKSURL)
	if cfg.AuthJWKSURL == "" {
		return nil, fmt.Errorf("AUTH_JWKS_URL is required")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
