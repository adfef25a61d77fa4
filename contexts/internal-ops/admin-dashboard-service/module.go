package admindashboardservice

import (
	"log/slog"

	"gorm.io/gorm"

	httpadapter "lyceum/contexts/internal-ops/admin-dashboard-service/adapters/http"
	"lyceum/contexts/internal-ops/admin-dashboard-service/adapters/memory"
	postgresadapter "lyceum/contexts/internal-ops/admin-dashboard-service/adapters/postgres"
	"lyceum/contexts/internal-ops/admin-dashboard-service/application"
	"lyceum/contexts/internal-ops/admin-dashboard-service/ports"
	"lyceum/internal/shared/gate"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies carries the audit store plus the read models of the other
// contexts, adapted in bootstrap.
type Dependencies struct {
	Repository  ports.Repository
	Users       ports.UserStatsReader
	Sales       ports.SalesStatsReader
	Datasets    ports.DatasetCounter
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Recorder    gate.Recorder
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:     deps.Repository,
		Users:    deps.Users,
		Sales:    deps.Sales,
		Datasets: deps.Datasets,
		Clock:    deps.Clock,
		IDGen:    deps.IDGenerator,
		Guard:    gate.Guard{Recorder: deps.Recorder, Logger: deps.Logger},
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

func NewPostgresModule(db *gorm.DB, deps Dependencies) Module {
	deps.Repository = postgresadapter.NewRepository(db, deps.Logger)
	deps.Clock = postgresadapter.SystemClock{}
	deps.IDGenerator = postgresadapter.UUIDGenerator{}
	return NewModule(deps)
}

func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	deps.Repository = store
	deps.IDGenerator = store
	module := NewModule(deps)
	module.Store = store
	return module
}
