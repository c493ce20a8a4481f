// Package config loads the service configuration from environment variables.
// Every setting has a default except the database URL; the loaded values are
// validated before the service starts so misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Merge    MergeConfig
	Cache    CacheConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// AppConfig holds deployment-level settings.
type AppConfig struct {
	// Env is "development" or "production" (default: production).
	// Development drops and recreates the registry schema on startup.
	Env string `env:"APP_ENV" envAlt:"ENVIRONMENT" default:"production"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single request inside the middleware chain.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`

	// MaxBodyBytes caps request bodies (default: 1MB).
	MaxBodyBytes int64 `env:"SERVER_MAX_BODY_BYTES" default:"1048576"`
}

// DatabaseConfig holds PostgreSQL pool settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required).
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// MergeConfig bounds concurrent merge transactions.
type MergeConfig struct {
	MaxConcurrent int           `env:"MERGE_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"MERGE_MAX_WAIT_TIME" default:"10s"`
	Timeout       time.Duration `env:"MERGE_TIMEOUT" default:"30s"`
}

// CacheConfig controls the match lookup cache.
type CacheConfig struct {
	// TTL is how long stored names for a code are reused. Zero disables caching.
	TTL time.Duration `env:"CACHE_TTL" default:"60s"`

	// SweepInterval is how often expired entries are dropped.
	SweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" default:"5m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds proxy and CORS settings.
type SecurityConfig struct {
	// TrustedProxies lists proxy CIDRs whose X-Real-IP/X-Forwarded-For headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// CORSOrigins lists allowed browser origins. Empty disables CORS headers.
	CORSOrigins []string `env:"CORS_ORIGINS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
