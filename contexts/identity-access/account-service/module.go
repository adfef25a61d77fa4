package account

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	cryptoadapter "lyceum/contexts/identity-access/account-service/adapters/crypto"
	httpadapter "lyceum/contexts/identity-access/account-service/adapters/http"
	"lyceum/contexts/identity-access/account-service/adapters/memory"
	postgresadapter "lyceum/contexts/identity-access/account-service/adapters/postgres"
	"lyceum/contexts/identity-access/account-service/application/commands"
	"lyceum/contexts/identity-access/account-service/application/queries"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

// Module is the account-service composition root exposed to runtime wiring.
type Module struct {
	Handler    httpadapter.Handler
	UserStats  queries.UserStatsUseCase
	LookupRole queries.LookupRoleUseCase
	Store      *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository   ports.Repository
	Hasher       ports.PasswordHasher
	Sessions     ports.SessionIssuer
	Audit        ports.AuditRecorder
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Recorder     gate.Recorder
	ActiveWindow time.Duration
	Logger       *slog.Logger
}

// NewModule wires account use-cases and the transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	guard := gate.Guard{Recorder: deps.Recorder, Logger: deps.Logger}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = cryptoadapter.BcryptHasher{}
	}

	handler := httpadapter.Handler{
		Register: commands.RegisterUseCase{
			Repository:  deps.Repository,
			Hasher:      hasher,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		Login: commands.LoginUseCase{
			Repository:  deps.Repository,
			Hasher:      hasher,
			Sessions:    deps.Sessions,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		Logout: commands.LogoutUseCase{
			Repository:  deps.Repository,
			Sessions:    deps.Sessions,
			Guard:       guard,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		UpdateProfile: commands.UpdateProfileUseCase{
			Repository:  deps.Repository,
			Guard:       guard,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		ChangePassword: commands.ChangePasswordUseCase{
			Repository:  deps.Repository,
			Hasher:      hasher,
			Guard:       guard,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		DeleteUser: commands.DeleteUserUseCase{
			Repository: deps.Repository,
			Guard:      guard,
			Logger:     deps.Logger,
		},
		UpdateRole: commands.UpdateRoleUseCase{
			Repository: deps.Repository,
			Audit:      deps.Audit,
			Guard:      guard,
			Clock:      deps.Clock,
			Logger:     deps.Logger,
		},
		GetUser: queries.GetUserUseCase{
			Repository: deps.Repository,
			Guard:      guard,
		},
		ListUsers: queries.ListUsersUseCase{
			Repository: deps.Repository,
			Guard:      guard,
		},
		Logger: deps.Logger,
	}

	return Module{
		Handler: handler,
		UserStats: queries.UserStatsUseCase{
			Repository:   deps.Repository,
			Clock:        deps.Clock,
			ActiveWindow: deps.ActiveWindow,
		},
		LookupRole: queries.LookupRoleUseCase{Repository: deps.Repository},
	}
}

// NewPostgresModule wires the gorm-backed repository.
func NewPostgresModule(db *gorm.DB, deps Dependencies) Module {
	deps.Repository = postgresadapter.NewRepository(db, deps.Logger)
	deps.Clock = postgresadapter.SystemClock{}
	deps.IDGenerator = postgresadapter.UUIDGenerator{}
	return NewModule(deps)
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
// Sessions, Audit, Hasher, Recorder and ActiveWindow are taken from deps.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	deps.Repository = store
	deps.IDGenerator = store
	module := NewModule(deps)
	module.Store = store
	return module
}
