package queries

import (
	"context"
	"errors"

	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

// LookupRoleUseCase gives the session resolver the stored role, so bans and
// promotions apply to tokens issued before the change.
type LookupRoleUseCase struct {
	Repository ports.Repository
}

func (u LookupRoleUseCase) Execute(ctx context.Context, userID string) (gate.Role, bool, error) {
	user, err := u.Repository.GetUser(ctx, userID)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return user.Role, true, nil
}
