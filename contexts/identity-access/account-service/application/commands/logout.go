package commands

import (
	"context"
	"log/slog"

	"lyceum/contexts/identity-access/account-service/domain/entities"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

type LogoutUseCase struct {
	Repository  ports.Repository
	Sessions    ports.SessionIssuer
	Guard       gate.Guard
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute revokes the presented token until it would have expired anyway.
func (u LogoutUseCase) Execute(ctx context.Context, principal *gate.Principal, token string) error {
	if err := u.Guard.Check(ctx, "auth.logout", resourceUser, principal, gate.Authenticated()); err != nil {
		return err
	}
	if err := u.Sessions.Revoke(ctx, token); err != nil {
		return err
	}
	recordActivity(ctx, u.Repository, u.IDGenerator, u.Logger, principal.ID, entities.ActivityLogout, nowFrom(u.Clock))
	return nil
}
