package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"AAVANAM_HOST", "AAVANAM_PORT", "AAVANAM_ENV", "AAVANAM_LOG_LEVEL",
	"AAVANAM_MAX_BODY_BYTES",
	"AAVANAM_FETCH_TIMEOUT", "AAVANAM_FETCH_RETRIES", "AAVANAM_MAX_ASSET_BYTES",
	"AAVANAM_ALLOW_FILE_ASSETS", "AAVANAM_CONCURRENCY", "AAVANAM_ASSET_CACHE_TTL",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD",
}

// clearEnv sets every variable Load reads to "", which envOrDefault treats
// the same as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false, want true by default")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.FetchTimeout != 15*time.Second || cfg.FetchRetries != 2 || cfg.MaxAssetBytes != 20<<20 {
		t.Errorf("fetch defaults = %v, %d, %d", cfg.FetchTimeout, cfg.FetchRetries, cfg.MaxAssetBytes)
	}
	if cfg.AllowFileAssets {
		t.Error("file assets should be off by default")
	}
	if cfg.Concurrency != 4 || cfg.AssetCacheTTL != 10*time.Minute || cfg.MaxBodyBytes != 32<<20 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.RedisEnabled() {
		t.Error("Redis should be disabled without REDIS_HOST")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AAVANAM_HOST", "127.0.0.1")
	t.Setenv("AAVANAM_PORT", "9000")
	t.Setenv("AAVANAM_ENV", "testing")
	t.Setenv("AAVANAM_LOG_LEVEL", "debug")
	t.Setenv("AAVANAM_FETCH_TIMEOUT", "3s")
	t.Setenv("AAVANAM_FETCH_RETRIES", "0")
	t.Setenv("AAVANAM_ALLOW_FILE_ASSETS", "true")
	t.Setenv("AAVANAM_CONCURRENCY", "8")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PASSWORD", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != "127.0.0.1:9000" || cfg.IsDev() {
		t.Errorf("server = %q, env %q", cfg.Addr(), cfg.Env)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.FetchTimeout != 3*time.Second || cfg.FetchRetries != 0 || !cfg.AllowFileAssets || cfg.Concurrency != 8 {
		t.Errorf("fetch = %+v", cfg)
	}
	if !cfg.RedisEnabled() || cfg.RedisAddr() != "cache:6379" || cfg.RedisPassword != "secret" {
		t.Errorf("redis = %q", cfg.RedisAddr())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{
			name: "malformed values reported together",
			env: map[string]string{
				"AAVANAM_FETCH_TIMEOUT": "soon",
				"AAVANAM_FETCH_RETRIES": "two",
				"AAVANAM_LOG_LEVEL":     "loud",
			},
			want: []string{"AAVANAM_FETCH_TIMEOUT", "AAVANAM_FETCH_RETRIES", "AAVANAM_LOG_LEVEL"},
		},
		{
			name: "file assets in production",
			env:  map[string]string{"AAVANAM_ENV": "production", "AAVANAM_ALLOW_FILE_ASSETS": "1"},
			want: []string{"AAVANAM_ALLOW_FILE_ASSETS"},
		},
		{
			name: "zero concurrency",
			env:  map[string]string{"AAVANAM_CONCURRENCY": "0"},
			want: []string{"AAVANAM_CONCURRENCY"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load() = nil error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %s", err, w)
				}
			}
		})
	}
}
