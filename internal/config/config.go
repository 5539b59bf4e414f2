// Package config loads the aavanamd service configuration from environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel slog.Level

	// MaxBodyBytes bounds a generate request body.
	MaxBodyBytes int64

	// Asset fetching
	FetchTimeout    time.Duration
	FetchRetries    int
	MaxAssetBytes   int64
	AllowFileAssets bool
	Concurrency     int
	AssetCacheTTL   time.Duration

	// Redis asset cache. Disabled when RedisHost is empty.
	RedisHost     string
	RedisPort     string
	RedisPassword string
}

// Load reads configuration from environment variables, applying defaults
// where a variable is unset or empty. Malformed numbers, durations and
// booleans are reported together.
func Load() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		Host:     envOrDefault("AAVANAM_HOST", "0.0.0.0"),
		Port:     envOrDefault("AAVANAM_PORT", "8080"),
		Env:      envOrDefault("AAVANAM_ENV", "development"),
		LogLevel: p.levelEnv("AAVANAM_LOG_LEVEL", slog.LevelInfo),

		MaxBodyBytes: p.int64Env("AAVANAM_MAX_BODY_BYTES", 32<<20),

		FetchTimeout:    p.durationEnv("AAVANAM_FETCH_TIMEOUT", 15*time.Second),
		FetchRetries:    p.intEnv("AAVANAM_FETCH_RETRIES", 2),
		MaxAssetBytes:   p.int64Env("AAVANAM_MAX_ASSET_BYTES", 20<<20),
		AllowFileAssets: p.boolEnv("AAVANAM_ALLOW_FILE_ASSETS", false),
		Concurrency:     p.intEnv("AAVANAM_CONCURRENCY", 4),
		AssetCacheTTL:   p.durationEnv("AAVANAM_ASSET_CACHE_TTL", 10*time.Minute),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     envOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}

	if cfg.Env == "production" && cfg.AllowFileAssets {
		return nil, fmt.Errorf("AAVANAM_ALLOW_FILE_ASSETS must not be set in production")
	}
	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("AAVANAM_CONCURRENCY must be at least 1, got %d", cfg.Concurrency)
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the service is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// RedisEnabled reports whether a shared asset cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// RedisAddr returns the Redis address (host:port).
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser collects conversion errors so that Load can report every bad
// variable at once.
type parser struct {
	errs []error
}

func (p *parser) fail(key, v string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, v, err))
}

func (p *parser) intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) int64Env(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) boolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return b
}

func (p *parser) durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}

func (p *parser) levelEnv(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return l
}
