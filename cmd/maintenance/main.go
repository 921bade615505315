// Package main is the entry point of the maintenance CLI. It runs the batch jobs that keep
// sessions, quotes and policies in sync with the clock, plus schema migration.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"insurance_backend/cmd/maintenance/internal/commands"
	"insurance_backend/internal/app/di"
	"insurance_backend/internal/platform/config"
	"insurance_backend/internal/platform/db"
	"insurance_backend/internal/platform/logger"
	infraredis "insurance_backend/internal/platform/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCmd(load).ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// load connects to the configured stores and wires the application.
func load(ctx context.Context) (*commands.Env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	l, err := logger.Init(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}

	gdb, err := db.Open(db.ConfigFromSettings(cfg.Database))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, policy cache will not be invalidated", "error", err)
		rdb = nil
	}

	c := di.Build(cfg, gdb, rdb, l)
	cleanup := func() {
		if err := c.Publisher.Close(); err != nil {
			slog.Error("failed to close event publisher", "error", err)
		}
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return &commands.Env{DB: gdb, Maintenance: c.Maintenance}, cleanup, nil
}
