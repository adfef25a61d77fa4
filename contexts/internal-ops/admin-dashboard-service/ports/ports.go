package ports

import (
	"context"
	"time"
)

// AuditLog is one administrative action. Rows are append-only.
type AuditLog struct {
	AuditID       string
	ActorID       string
	Action        string
	TargetID      string
	OldValue      string
	NewValue      string
	Justification string
	SourceIP      string
	OccurredAt    time.Time
}

type Repository interface {
	AppendAuditLog(ctx context.Context, row AuditLog) error
	ListRecentAuditLogs(ctx context.Context, limit int) ([]AuditLog, error)
}

type UserStats struct {
	TotalUsers  int64
	ActiveUsers int64
	BannedUsers int64
	AdminUsers  int64
}

type SalesStats struct {
	TotalProducts     int64
	TotalPurchases    int64
	TotalRevenueCents int64
}

// Read models owned by other contexts. Bootstrap adapts their services.
type UserStatsReader interface {
	UserStats(ctx context.Context) (UserStats, error)
}

type SalesStatsReader interface {
	SalesStats(ctx context.Context) (SalesStats, error)
}

type DatasetCounter interface {
	CountDatasets(ctx context.Context) (int64, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
