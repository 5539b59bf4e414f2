// Package app builds the engine and its collaborators from configuration.
// It is shared by the HTTP service and the MCP server.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jafranjemal/aavanamkit"
	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/internal/config"
)

// NewLogger returns a JSON logger in production and a text logger otherwise.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Env == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ConnectRedis creates a Redis client and verifies the connection with a ping.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// AssetCache returns a Redis-backed cache when client is non-nil and an
// in-memory one otherwise.
func AssetCache(cfg *config.Config, client *redis.Client, logger *slog.Logger) asset.Cache {
	if client == nil {
		return asset.NewMemoryCache(aavanamkit.DefaultCacheBytes)
	}
	return asset.NewRedisCache(client, cfg.AssetCacheTTL, logger)
}

// NewEngine creates an Engine whose image fetcher follows cfg.
func NewEngine(cfg *config.Config, cache asset.Cache, logger *slog.Logger) *aavanamkit.Engine {
	fetcher := asset.NewHTTPFetcher(
		asset.WithTimeout(cfg.FetchTimeout),
		asset.WithRetries(cfg.FetchRetries),
		asset.WithMaxBytes(cfg.MaxAssetBytes),
		asset.WithFileAccess(cfg.AllowFileAssets),
		asset.WithCache(cache),
		asset.WithLogger(logger),
	)
	return aavanamkit.New(
		aavanamkit.WithLogger(logger),
		aavanamkit.WithFetcher(fetcher),
		aavanamkit.WithConcurrency(cfg.Concurrency),
	)
}
