package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"insurance_backend/internal/app/di"
	"insurance_backend/internal/app/router"
	"insurance_backend/internal/platform/config"
	"insurance_backend/internal/platform/db"
	"insurance_backend/internal/platform/logger"
	infraredis "insurance_backend/internal/platform/redis"
	"insurance_backend/internal/shared/ratelimiter"
	"insurance_backend/internal/shared/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	l, err := logger.Init(cfg.Logger)
	if err != nil {
		return err
	}
	validation.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.Open(db.ConfigFromSettings(cfg.Database))
	if err != nil {
		return err
	}
	if cfg.Database.RunMigrations {
		if err := di.Migrate(gdb); err != nil {
			return err
		}
	}

	// Redis
	rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer closeRedis(rdb)
	}

	c := di.Build(cfg, gdb, rdb, l)
	defer func() {
		if err := c.Publisher.Close(); err != nil {
			slog.Error("failed to close event publisher", "error", err)
		}
	}()

	store, err := ratelimiter.NewStore(rdb, "ratelimit:auth")
	if err != nil {
		return err
	}
	authLimit, err := ratelimiter.Middleware(store, cfg.App.RateLimitAuth)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router.NewRouter(cfg.App, c.Handlers, c.Tokens, authLimit, l),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.App.Env, "prefix", cfg.App.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func closeRedis(rdb *redisv9.Client) {
	if err := rdb.Close(); err != nil {
		slog.Error("failed to close Redis client", "error", err)
	}
}
