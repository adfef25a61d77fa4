package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "lyceum/contexts/identity-access/account-service/application"
	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

type ChangePasswordCommand struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

// ChangePasswordUseCase lets an owner rotate their password. Administrators
// may reset any account without the current password.
type ChangePasswordUseCase struct {
	Repository  ports.Repository
	Hasher      ports.PasswordHasher
	Guard       gate.Guard
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u ChangePasswordUseCase) Execute(ctx context.Context, principal *gate.Principal, cmd ChangePasswordCommand) error {
	if strings.TrimSpace(cmd.UserID) == "" {
		return invalid("user_id", "is required")
	}
	if len(cmd.NewPassword) < minPasswordLength {
		return invalid("new_password", "must be at least 8 characters")
	}
	if len(cmd.NewPassword) > maxPasswordBytes {
		return invalid("new_password", "must be at most 72 bytes")
	}

	var target entities.User
	lookup := func(ctx context.Context) (string, bool, error) {
		user, err := u.Repository.GetUser(ctx, cmd.UserID)
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		target = user
		return user.UserID, true, nil
	}
	if err := u.Guard.CheckOwner(ctx, "user.change_password", resourceUser, principal, lookup); err != nil {
		return err
	}

	selfService := principal.ID == target.UserID
	if selfService || !principal.IsAdmin() {
		if cmd.CurrentPassword == "" {
			return invalid("current_password", "is required")
		}
		if err := u.Hasher.Compare(target.PasswordHash, cmd.CurrentPassword); err != nil {
			return invalid("current_password", "is incorrect")
		}
	}

	hash, err := u.Hasher.Hash(cmd.NewPassword)
	if err != nil {
		return err
	}
	now := nowFrom(u.Clock)
	if err := u.Repository.UpdatePasswordHash(ctx, cmd.UserID, hash, now); err != nil {
		return err
	}
	recordActivity(ctx, u.Repository, u.IDGenerator, u.Logger, principal.ID, entities.ActivityPasswordChange, now)

	application.ResolveLogger(u.Logger).Info("password changed",
		"event", "account_password_changed",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", cmd.UserID,
		"actor_id", principal.ID,
		"admin_reset", !selfService,
	)
	return nil
}
