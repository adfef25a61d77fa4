package productservice

import (
	"log/slog"
	"time"

	httpadapter "lyceum/contexts/catalog/product-service/adapters/http"
	"lyceum/contexts/catalog/product-service/adapters/memory"
	postgresadapter "lyceum/contexts/catalog/product-service/adapters/postgres"
	"lyceum/contexts/catalog/product-service/application"
	"lyceum/contexts/catalog/product-service/ports"
	"lyceum/internal/shared/gate"

	"gorm.io/gorm"
)

// Module is the product-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository     ports.Repository
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Recorder       gate.Recorder
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Idempotency: deps.Idempotency,
		Clock:       deps.Clock,
		IDGen:       deps.IDGenerator,
		Guard: gate.Guard{
			Recorder: deps.Recorder,
			Logger:   deps.Logger,
		},
		Logger:         deps.Logger,
		IdempotencyTTL: deps.IdempotencyTTL,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewPostgresModule wires the gorm-backed repository.
func NewPostgresModule(db *gorm.DB, recorder gate.Recorder, logger *slog.Logger) Module {
	repo := postgresadapter.NewRepository(db, logger)
	return NewModule(Dependencies{
		Repository:     repo,
		Idempotency:    repo,
		Clock:          postgresadapter.SystemClock{},
		IDGenerator:    postgresadapter.UUIDGenerator{},
		Recorder:       recorder,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(recorder gate.Recorder, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:     store,
		Idempotency:    store,
		IDGenerator:    store,
		Recorder:       recorder,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
