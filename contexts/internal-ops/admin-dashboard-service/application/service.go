package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	domainerrors "lyceum/contexts/internal-ops/admin-dashboard-service/domain/errors"
	"lyceum/contexts/internal-ops/admin-dashboard-service/ports"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

const resourceAdmin = "Admin"

type Service struct {
	Repo     ports.Repository
	Users    ports.UserStatsReader
	Sales    ports.SalesStatsReader
	Datasets ports.DatasetCounter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Guard    gate.Guard
	Logger   *slog.Logger
}

type RecordActionInput struct {
	ActorID       string
	Action        string
	TargetID      string
	OldValue      string
	NewValue      string
	Justification string
	SourceIP      string
}

type Analytics struct {
	TotalUsers        int64
	ActiveUsers       int64
	BannedUsers       int64
	AdminUsers        int64
	TotalProducts     int64
	TotalDatasets     int64
	TotalPurchases    int64
	TotalRevenueCents int64
	GeneratedAt       time.Time
}

// RecordAdminAction appends an audit row. Callers have already authorized the
// action itself; this only requires an actor.
func (s Service) RecordAdminAction(ctx context.Context, input RecordActionInput) (ports.AuditLog, error) {
	input.ActorID = strings.TrimSpace(input.ActorID)
	input.Action = strings.TrimSpace(input.Action)
	switch {
	case input.ActorID == "":
		return ports.AuditLog{}, invalid("actor_id", "is required")
	case input.Action == "":
		return ports.AuditLog{}, invalid("action", "is required")
	}

	auditID, err := s.newID(ctx)
	if err != nil {
		return ports.AuditLog{}, err
	}
	row := ports.AuditLog{
		AuditID:       auditID,
		ActorID:       input.ActorID,
		Action:        input.Action,
		TargetID:      strings.TrimSpace(input.TargetID),
		OldValue:      input.OldValue,
		NewValue:      input.NewValue,
		Justification: strings.TrimSpace(input.Justification),
		SourceIP:      strings.TrimSpace(input.SourceIP),
		OccurredAt:    s.now(),
	}
	if err := s.Repo.AppendAuditLog(ctx, row); err != nil {
		return ports.AuditLog{}, err
	}

	ResolveLogger(s.Logger).Info("admin action recorded",
		"event", "admin_action_recorded",
		"module", "internal-ops/admin-dashboard-service",
		"layer", "application",
		"audit_id", row.AuditID,
		"actor_id", row.ActorID,
		"action", row.Action,
		"target_id", row.TargetID,
	)
	return row, nil
}

func (s Service) ListAuditLogs(ctx context.Context, principal *gate.Principal, limit int) ([]ports.AuditLog, error) {
	if err := s.Guard.Check(ctx, "admin.audit_logs", resourceAdmin, principal, gate.HasRole(gate.RoleAdmin)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.Repo.ListRecentAuditLogs(ctx, limit)
}

// Analytics aggregates the platform counters. The three read models are
// queried concurrently; the first failure cancels the rest.
func (s Service) Analytics(ctx context.Context, principal *gate.Principal) (Analytics, error) {
	if err := s.Guard.Check(ctx, "admin.analytics", resourceAdmin, principal, gate.HasRole(gate.RoleAdmin)); err != nil {
		return Analytics{}, err
	}
	if s.Users == nil || s.Sales == nil || s.Datasets == nil {
		return Analytics{}, domainerrors.ErrMissingReadModel
	}

	var (
		users    ports.UserStats
		sales    ports.SalesStats
		datasets int64
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		users, err = s.Users.UserStats(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		sales, err = s.Sales.SalesStats(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		datasets, err = s.Datasets.CountDatasets(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return Analytics{}, err
	}

	return Analytics{
		TotalUsers:        users.TotalUsers,
		ActiveUsers:       users.ActiveUsers,
		BannedUsers:       users.BannedUsers,
		AdminUsers:        users.AdminUsers,
		TotalProducts:     sales.TotalProducts,
		TotalDatasets:     datasets,
		TotalPurchases:    sales.TotalPurchases,
		TotalRevenueCents: sales.TotalRevenueCents,
		GeneratedAt:       s.now(),
	}, nil
}

func invalid(field string, detail string) error {
	return fmt.Errorf("%w: %w", domainerrors.ErrInvalidRequest, validation.Field(field, detail))
}

func (s Service) newID(ctx context.Context) (string, error) {
	if s.IDGen == nil {
		return "", fmt.Errorf("admin dashboard: id generator not configured")
	}
	return s.IDGen.NewID(ctx)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
