// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	datasetservice "lyceum/contexts/catalog/dataset-service"
	datasetpostgres "lyceum/contexts/catalog/dataset-service/adapters/postgres"
	productservice "lyceum/contexts/catalog/product-service"
	productpostgres "lyceum/contexts/catalog/product-service/adapters/postgres"
	account "lyceum/contexts/identity-access/account-service"
	accountpostgres "lyceum/contexts/identity-access/account-service/adapters/postgres"
	admindashboardservice "lyceum/contexts/internal-ops/admin-dashboard-service"
	adminpostgres "lyceum/contexts/internal-ops/admin-dashboard-service/adapters/postgres"
	"lyceum/internal/platform/config"
	"lyceum/internal/platform/db"
	"lyceum/internal/platform/httpserver"
	"lyceum/internal/platform/metrics"
	"lyceum/internal/platform/session"
)

// App holds every long-lived dependency of one process.
type App struct {
	Config   config.Config
	Modules  httpserver.Modules
	Sessions *session.Manager
	Resolver session.Resolver
	Metrics  *metrics.Metrics
	Postgres *db.Postgres
	Redis    *redis.Client
	Logger   *slog.Logger
}

// Models returns the gorm row types of every context, for AutoMigrate.
func Models() [][]any {
	return [][]any{
		accountpostgres.Models(),
		productpostgres.Models(),
		datasetpostgres.Models(),
		adminpostgres.Models(),
	}
}

func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	m, err := metrics.New()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	app.Metrics = m

	revocations, err := app.revocationStore(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	manager, err := session.NewManager(session.Options{
		Secret:      []byte(cfg.SessionSecret),
		TTL:         cfg.SessionTTL,
		Issuer:      cfg.ServiceName,
		Revocations: revocations,
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Sessions = manager

	switch cfg.StorageDriver {
	case config.StorageMemory:
		app.Modules = buildInMemory(manager, m, cfg.ActiveUserWindow, logger)
	case config.StoragePostgres:
		pg, err := db.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Postgres = pg
		app.Modules = buildPostgres(pg, manager, m, cfg.ActiveUserWindow, logger)
	default:
		_ = app.Close()
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	app.Resolver = session.Resolver{
		Manager:    manager,
		CookieName: cfg.SessionCookieName,
		LookupRole: app.Modules.Accounts.LookupRole.Execute,
		Logger:     logger,
	}

	logger.Info("app built",
		"event", "bootstrap_built",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"storage_driver", cfg.StorageDriver,
		"redis", cfg.RedisAddr != "",
	)
	return app, nil
}

// Server builds the HTTP server over the app's modules.
func (a *App) Server() *httpserver.Server {
	return httpserver.New(a.Modules, httpserver.Options{
		Addr:               a.Config.Addr(),
		Sessions:           a.Resolver,
		SecureCookies:      a.Config.StorageDriver == config.StoragePostgres,
		CORSAllowedOrigins: a.Config.CORSAllowedOrigins,
		Metrics:            a.Metrics,
		Logger:             a.Logger,
	})
}

// Migrate runs AutoMigrate. In-memory storage needs no schema.
func (a *App) Migrate(ctx context.Context) error {
	if a.Postgres == nil {
		return nil
	}
	return a.Postgres.Migrate(ctx, a.Logger, Models()...)
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Postgres != nil {
		errs = append(errs, a.Postgres.Close())
	}
	return errors.Join(errs...)
}

func (a *App) revocationStore(ctx context.Context) (session.RevocationStore, error) {
	if a.Config.RedisAddr == "" {
		return session.NewMemoryRevocations(), nil
	}
	client := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	a.Redis = client
	return session.NewRedisRevocations(client, a.Config.ServiceName+":session:revoked:"), nil
}

func buildInMemory(sessions *session.Manager, recorder *metrics.Metrics, activeWindow time.Duration, logger *slog.Logger) httpserver.Modules {
	products := productservice.NewInMemoryModule(recorder, logger)
	datasets := datasetservice.NewInMemoryModule(recorder, logger)

	var accounts account.Module
	admin := admindashboardservice.NewInMemoryModule(admindashboardservice.Dependencies{
		Users:    accountStats{accounts: &accounts},
		Sales:    salesStats{products: products.Service},
		Datasets: datasets.Service,
		Recorder: recorder,
		Logger:   logger,
	})
	accounts = account.NewInMemoryModule(account.Dependencies{
		Sessions:     sessionIssuer{manager: sessions},
		Audit:        auditTrail{admin: admin.Service},
		Recorder:     recorder,
		ActiveWindow: activeWindow,
		Logger:       logger,
	})
	return httpserver.Modules{Accounts: accounts, Products: products, Datasets: datasets, Admin: admin}
}

func buildPostgres(pg *db.Postgres, sessions *session.Manager, recorder *metrics.Metrics, activeWindow time.Duration, logger *slog.Logger) httpserver.Modules {
	products := productservice.NewPostgresModule(pg.DB, recorder, logger)
	datasets := datasetservice.NewPostgresModule(pg.DB, recorder, logger)

	var accounts account.Module
	admin := admindashboardservice.NewPostgresModule(pg.DB, admindashboardservice.Dependencies{
		Users:    accountStats{accounts: &accounts},
		Sales:    salesStats{products: products.Service},
		Datasets: datasets.Service,
		Recorder: recorder,
		Logger:   logger,
	})
	accounts = account.NewPostgresModule(pg.DB, account.Dependencies{
		Sessions:     sessionIssuer{manager: sessions},
		Audit:        auditTrail{admin: admin.Service},
		Recorder:     recorder,
		ActiveWindow: activeWindow,
		Logger:       logger,
	})
	return httpserver.Modules{Accounts: accounts, Products: products, Datasets: datasets, Admin: admin}
}
