// Command aavanamd serves document generation over HTTP.
//
// It loads configuration from the environment (see internal/config),
// connects to Redis for a shared asset cache when REDIS_HOST is set, and
// shuts down gracefully on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/internal/app"
	"github.com/jafranjemal/aavanamkit/internal/config"
	"github.com/jafranjemal/aavanamkit/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	opts := server.Options{Logger: logger, MaxBodyBytes: cfg.MaxBodyBytes}

	var client *redis.Client
	if cfg.RedisEnabled() {
		client, err = app.ConnectRedis(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		logger.Info("redis connected", "addr", cfg.RedisAddr())
	} else {
		logger.Warn("redis not configured, assets are cached in memory")
	}

	cache := app.AssetCache(cfg, client, logger)
	if rc, ok := cache.(*asset.RedisCache); ok {
		opts.AssetCache = rc
	}
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(app.NewEngine(cfg, cache, logger), opts).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
