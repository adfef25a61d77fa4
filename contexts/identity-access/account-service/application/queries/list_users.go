package queries

import (
	"context"
	"fmt"

	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

type ListUsersQuery struct {
	Role  string
	Page  int
	Limit int
}

type ListUsersUseCase struct {
	Repository ports.Repository
	Guard      gate.Guard
}

func (u ListUsersUseCase) Execute(ctx context.Context, principal *gate.Principal, query ListUsersQuery) ([]entities.User, int, error) {
	filter := ports.UserFilter{Page: query.Page, Limit: query.Limit}
	if query.Role != "" {
		role, ok := gate.ParseRole(query.Role)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %w", domainerrors.ErrInvalidRequest, validation.Field("role", "must be one of: user admin banned"))
		}
		filter.Role = role
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	if err := u.Guard.Check(ctx, "admin.list_users", "User", principal, gate.HasRole(gate.RoleAdmin)); err != nil {
		return nil, 0, err
	}
	return u.Repository.ListUsers(ctx, filter)
}
