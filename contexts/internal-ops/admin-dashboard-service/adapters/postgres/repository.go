package postgresadapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lyceum/contexts/internal-ops/admin-dashboard-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Models lists the row types owned by this adapter, for AutoMigrate.
func Models() []any {
	return []any{&auditLogModel{}}
}

func (r *Repository) AppendAuditLog(ctx context.Context, row ports.AuditLog) error {
	model := auditLogModel{
		AuditID:       row.AuditID,
		ActorID:       row.ActorID,
		Action:        row.Action,
		TargetID:      row.TargetID,
		OldValue:      row.OldValue,
		NewValue:      row.NewValue,
		Justification: row.Justification,
		SourceIP:      row.SourceIP,
		OccurredAt:    row.OccurredAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *Repository) ListRecentAuditLogs(ctx context.Context, limit int) ([]ports.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []auditLogModel
	if err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Order("audit_id DESC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.AuditLog, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.AuditLog{
			AuditID:       row.AuditID,
			ActorID:       row.ActorID,
			Action:        row.Action,
			TargetID:      row.TargetID,
			OldValue:      row.OldValue,
			NewValue:      row.NewValue,
			Justification: row.Justification,
			SourceIP:      row.SourceIP,
			OccurredAt:    row.OccurredAt.UTC(),
		})
	}
	return items, nil
}

type auditLogModel struct {
	AuditID       string    `gorm:"column:audit_id;primaryKey"`
	ActorID       string    `gorm:"column:actor_id;index"`
	Action        string    `gorm:"column:action"`
	TargetID      string    `gorm:"column:target_id;index"`
	OldValue      string    `gorm:"column:old_value"`
	NewValue      string    `gorm:"column:new_value"`
	Justification string    `gorm:"column:justification"`
	SourceIP      string    `gorm:"column:source_ip"`
	OccurredAt    time.Time `gorm:"column:occurred_at;index"`
}

func (auditLogModel) TableName() string {
	return "admin_audit_logs"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.Repository = (*Repository)(nil)
