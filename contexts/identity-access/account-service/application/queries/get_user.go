package queries

import (
	"context"
	"fmt"
	"strings"

	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

type GetUserUseCase struct {
	Repository ports.Repository
	Guard      gate.Guard
}

// Me returns the caller's own account.
func (u GetUserUseCase) Me(ctx context.Context, principal *gate.Principal) (entities.User, error) {
	if err := u.Guard.Check(ctx, "user.me", "User", principal, gate.Authenticated()); err != nil {
		return entities.User{}, err
	}
	return u.Repository.GetUser(ctx, principal.ID)
}

// Profile is the public read used by GET /users/{id}.
func (u GetUserUseCase) Profile(ctx context.Context, userID string) (entities.User, error) {
	if strings.TrimSpace(userID) == "" {
		return entities.User{}, fmt.Errorf("%w: %w", domainerrors.ErrInvalidRequest, validation.Field("user_id", "is required"))
	}
	return u.Repository.GetUser(ctx, userID)
}
