package datasetservice

import (
	"log/slog"

	"gorm.io/gorm"

	httpadapter "lyceum/contexts/catalog/dataset-service/adapters/http"
	"lyceum/contexts/catalog/dataset-service/adapters/memory"
	postgresadapter "lyceum/contexts/catalog/dataset-service/adapters/postgres"
	"lyceum/contexts/catalog/dataset-service/application"
	"lyceum/contexts/catalog/dataset-service/ports"
	"lyceum/internal/shared/gate"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Recorder    gate.Recorder
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Clock:  deps.Clock,
		IDGen:  deps.IDGenerator,
		Guard:  gate.Guard{Recorder: deps.Recorder, Logger: deps.Logger},
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

func NewPostgresModule(db *gorm.DB, recorder gate.Recorder, logger *slog.Logger) Module {
	return NewModule(Dependencies{
		Repository:  postgresadapter.NewRepository(db, logger),
		Clock:       postgresadapter.SystemClock{},
		IDGenerator: postgresadapter.UUIDGenerator{},
		Recorder:    recorder,
		Logger:      logger,
	})
}

func NewInMemoryModule(recorder gate.Recorder, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		IDGenerator: store,
		Recorder:    recorder,
		Logger:      logger,
	})
	module.Store = store
	return module
}
