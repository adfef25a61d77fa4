package commands

import (
	"context"
	"log/slog"
	"strings"

	application "lyceum/contexts/identity-access/account-service/application"
	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

type UpdateRoleCommand struct {
	UserID   string
	Role     string
	Reason   string
	SourceIP string
}

// UpdateRoleUseCase is the admin-only role change, audited through AuditRecorder.
// An audit write failure is logged, not returned: the role change has already landed.
type UpdateRoleUseCase struct {
	Repository ports.Repository
	Audit      ports.AuditRecorder
	Guard      gate.Guard
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (u UpdateRoleUseCase) Execute(ctx context.Context, principal *gate.Principal, cmd UpdateRoleCommand) (entities.User, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.UserID) == "" {
		return entities.User{}, invalid("user_id", "is required")
	}
	role, ok := gate.ParseRole(cmd.Role)
	if !ok {
		return entities.User{}, invalid("role", "must be one of: user admin banned")
	}

	if err := u.Guard.Check(ctx, "admin.update_role", resourceUser, principal, gate.HasRole(gate.RoleAdmin)); err != nil {
		return entities.User{}, err
	}
	if principal.ID == cmd.UserID {
		return entities.User{}, domainerrors.ErrSelfRoleChange
	}

	current, err := u.Repository.GetUser(ctx, cmd.UserID)
	if err != nil {
		return entities.User{}, err
	}
	now := nowFrom(u.Clock)
	updated, err := u.Repository.UpdateRole(ctx, cmd.UserID, role, now)
	if err != nil {
		return entities.User{}, err
	}

	if u.Audit != nil {
		if err := u.Audit.RecordRoleChange(ctx, ports.RoleChange{
			AdminID:      principal.ID,
			TargetUserID: cmd.UserID,
			OldRole:      current.Role,
			NewRole:      role,
			Reason:       strings.TrimSpace(cmd.Reason),
			SourceIP:     cmd.SourceIP,
			ChangedAt:    now,
		}); err != nil {
			logger.Error("role change audit failed",
				"event", "account_role_audit_failed",
				"module", "identity-access/account-service",
				"layer", "application",
				"user_id", cmd.UserID,
				"admin_id", principal.ID,
				"old_role", string(current.Role),
				"new_role", string(role),
				"error", err.Error(),
			)
		}
	}

	logger.Info("role updated",
		"event", "account_role_updated",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", cmd.UserID,
		"admin_id", principal.ID,
		"old_role", string(current.Role),
		"new_role", string(role),
	)
	return updated, nil
}
