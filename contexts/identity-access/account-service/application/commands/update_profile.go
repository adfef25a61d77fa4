package commands

import (
	"context"
	"log/slog"
	"strings"

	"lyceum/contexts/identity-access/account-service/domain/entities"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

type UpdateProfileCommand struct {
	UserID string
	Name   *string
	Bio    *string
}

type UpdateProfileUseCase struct {
	Repository  ports.Repository
	Guard       gate.Guard
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u UpdateProfileUseCase) Execute(ctx context.Context, principal *gate.Principal, cmd UpdateProfileCommand) (entities.User, error) {
	if strings.TrimSpace(cmd.UserID) == "" {
		return entities.User{}, invalid("user_id", "is required")
	}
	if cmd.Name == nil && cmd.Bio == nil {
		return entities.User{}, invalid("body", "at least one field must be provided")
	}
	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) == "" {
		return entities.User{}, invalid("name", "must not be empty")
	}

	if err := u.Guard.CheckOwner(ctx, "user.update_profile", resourceUser, principal, userOwner(u.Repository, cmd.UserID)); err != nil {
		return entities.User{}, err
	}

	now := nowFrom(u.Clock)
	user, err := u.Repository.UpdateProfile(ctx, cmd.UserID, ports.ProfilePatch{Name: cmd.Name, Bio: cmd.Bio}, now)
	if err != nil {
		return entities.User{}, err
	}
	recordActivity(ctx, u.Repository, u.IDGenerator, u.Logger, principal.ID, entities.ActivityProfileUpdate, now)
	return user, nil
}
