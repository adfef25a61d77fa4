package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"lyceum/internal/app/bootstrap"
	"lyceum/internal/platform/config"
)

//go:generate swag init --generalInfo main.go --dir ./,../../internal/platform/httpserver,../../contexts --parseInternal --output ../../internal/platform/httpserver/docs --outputTypes go

// @title Lyceum API
// @version 1.0
// @description Products, datasets, accounts and admin analytics behind a uniform access-control gate.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Migrate postgres schema when that driver is selected.
// 4) Serve HTTP until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := cfg.NewLogger(os.Stdout)

	if err := run(cfg, logger); err != nil {
		os.Exit(1)
	}
	logger.Info("api stopped", "event", "api_stopped")
}

// run returns only after app.Close, so main can exit non-zero without skipping cleanup.
func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "event", "api_bootstrap_failed", "error", err.Error())
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("shutdown close failed", "event", "api_close_failed", "error", err.Error())
		}
	}()

	if err := app.Migrate(ctx); err != nil {
		logger.Error("migration failed", "event", "api_migration_failed", "error", err.Error())
		return fmt.Errorf("migrate: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return app.Server().Run(groupCtx)
	})
	if err := group.Wait(); err != nil {
		logger.Error("api stopped with error", "event", "api_stopped", "error", err.Error())
		return err
	}
	return nil
}
