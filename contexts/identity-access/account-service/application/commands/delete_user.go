package commands

import (
	"context"
	"log/slog"
	"strings"

	application "lyceum/contexts/identity-access/account-service/application"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

type DeleteUserUseCase struct {
	Repository ports.Repository
	Guard      gate.Guard
	Logger     *slog.Logger
}

func (u DeleteUserUseCase) Execute(ctx context.Context, principal *gate.Principal, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user_id", "is required")
	}
	if err := u.Guard.CheckOwner(ctx, "user.delete", resourceUser, principal, userOwner(u.Repository, userID)); err != nil {
		return err
	}
	if err := u.Repository.DeleteUser(ctx, userID); err != nil {
		return err
	}

	application.ResolveLogger(u.Logger).Info("user deleted",
		"event", "account_user_deleted",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", userID,
		"actor_id", principal.ID,
	)
	return nil
}
