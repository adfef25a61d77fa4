package commands

import (
	"context"
	"log/slog"
	"strings"

	application "lyceum/contexts/identity-access/account-service/application"
	"lyceum/contexts/identity-access/account-service/domain/entities"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

type RegisterCommand struct {
	Email    string
	Name     string
	Password string
}

// RegisterUseCase creates a user account with the default role.
type RegisterUseCase struct {
	Repository  ports.Repository
	Hasher      ports.PasswordHasher
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (entities.User, error) {
	email := normalizeEmail(cmd.Email)
	name := strings.TrimSpace(cmd.Name)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return entities.User{}, invalid("email", "must be a valid email address")
	case name == "":
		return entities.User{}, invalid("name", "is required")
	case len(cmd.Password) < minPasswordLength:
		return entities.User{}, invalid("password", "must be at least 8 characters")
	case len(cmd.Password) > maxPasswordBytes:
		return entities.User{}, invalid("password", "must be at most 72 bytes")
	}

	hash, err := u.Hasher.Hash(cmd.Password)
	if err != nil {
		return entities.User{}, err
	}
	userID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}
	now := nowFrom(u.Clock)
	user, err := u.Repository.CreateUser(ctx, entities.User{
		UserID:       userID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         gate.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return entities.User{}, err
	}

	recordActivity(ctx, u.Repository, u.IDGenerator, u.Logger, user.UserID, entities.ActivityRegister, now)
	application.ResolveLogger(u.Logger).Info("user registered",
		"event", "account_user_registered",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return user, nil
}
