// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the full service configuration.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	JWT       JWTConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig

	// TZEastOffsetHours shifts timestamps in API responses east of UTC.
	TZEastOffsetHours int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string
	Port int
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings. An empty DSN selects
// the in-memory store.
type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// RedisConfig holds session cache settings. An empty Addr selects the
// in-memory session store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig holds per-client request throttling settings.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// CORSConfig holds allowed cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from the environment. JWT_SECRET is mandatory;
// everything else has a default.
func Load() (*Config, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	expiration, err := jwtExpiration()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: envOr("BACKEND_HOST", "0.0.0.0"),
			Port: envInt("BACKEND_PORT", 8080),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "text"),
			Output: envOr("LOG_OUTPUT", "stdout"),
		},
		JWT: JWTConfig{
			Secret:     secret,
			Expiration: expiration,
		},
		Database: DatabaseConfig{
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envInt("DB_CONN_MAX_LIFETIME_SECONDS", 300),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envInt("RATE_LIMIT_RPS", 50),
			Burst:             envInt("RATE_LIMIT_BURST", 100),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(envOr("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		TZEastOffsetHours: envInt("TZ_EAST_OFFSET_IN_HOURS", 0),
	}

	return cfg, nil
}

// Location returns the fixed timezone used to render timestamps.
func (c *Config) Location() *time.Location {
	if c.TZEastOffsetHours == 0 {
		return time.UTC
	}
	return time.FixedZone("local", c.TZEastOffsetHours*3600)
}

func jwtExpiration() (time.Duration, error) {
	value := envInt("JWT_EXPIRATION_VALUE", 24)
	unit := envOr("JWT_EXPIRATION_UNIT", "hours")
	seconds, err := unitToSeconds(int64(value), unit)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func unitToSeconds(value int64, unit string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "seconds":
		return value, nil
	case "minutes":
		return value * 60, nil
	case "hours":
		return value * 3600, nil
	case "days":
		return value * 86400, nil
	case "weeks":
		return value * 604800, nil
	case "months":
		return value * 2592000, nil
	case "years":
		return value * 31536000, nil
	default:
		return 0, fmt.Errorf("invalid JWT expiration unit %q", unit)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
