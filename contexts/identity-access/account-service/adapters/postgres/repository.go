package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

const usersEmailConstraint = "idx_users_email"

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
	return []any{&userModel{}, &activityModel{}}
}

func (r *Repository) CreateUser(ctx context.Context, user entities.User) (entities.User, error) {
	row := userModelFromEntity(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			if name := constraintName(err); name != "" && name != usersEmailConstraint {
				r.logger.Warn("unexpected unique violation on users",
					"event", "account_users_unique_violation",
					"module", "identity-access/account-service",
					"layer", "adapter",
					"constraint", name,
				)
			}
			return entities.User{}, domainerrors.ErrEmailTaken
		}
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (entities.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

func (r *Repository) first(ctx context.Context, query string, arg string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUsers(ctx context.Context, filter ports.UserFilter) ([]entities.User, int, error) {
	tx := r.db.WithContext(ctx).Model(&userModel{})
	if filter.Role != "" {
		tx = tx.Where("role = ?", string(filter.Role))
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []userModel
	if err := tx.
		Order("created_at DESC").
		Order("user_id ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}
	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, int(total), nil
}

func (r *Repository) UpdateProfile(ctx context.Context, userID string, patch ports.ProfilePatch, now time.Time) (entities.User, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Bio != nil {
		updates["bio"] = strings.TrimSpace(*patch.Bio)
	}
	if err := r.update(ctx, userID, updates); err != nil {
		return entities.User{}, err
	}
	return r.GetUser(ctx, userID)
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string, now time.Time) error {
	return r.update(ctx, userID, map[string]any{
		"password_hash": passwordHash,
		"updated_at":    now.UTC(),
	})
}

func (r *Repository) UpdateRole(ctx context.Context, userID string, role gate.Role, now time.Time) (entities.User, error) {
	if err := r.update(ctx, userID, map[string]any{
		"role":       string(role),
		"updated_at": now.UTC(),
	}); err != nil {
		return entities.User{}, err
	}
	return r.GetUser(ctx, userID)
}

func (r *Repository) update(ctx context.Context, userID string, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ?", userID).Delete(&userModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrUserNotFound
		}
		return tx.Where("user_id = ?", userID).Delete(&activityModel{}).Error
	})
}

func (r *Repository) CountUsers(ctx context.Context) (ports.UserCounts, error) {
	var rows []struct {
		Role  string
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).
		Error; err != nil {
		return ports.UserCounts{}, err
	}
	var counts ports.UserCounts
	for _, row := range rows {
		counts.Total += row.Total
		switch gate.Role(row.Role) {
		case gate.RoleAdmin:
			counts.Admins = row.Total
		case gate.RoleBanned:
			counts.Banned = row.Total
		}
	}
	return counts, nil
}

func (r *Repository) RecordActivity(ctx context.Context, event entities.ActivityEvent) error {
	row := activityModel{
		EventID:    event.EventID,
		UserID:     event.UserID,
		Kind:       string(event.Kind),
		OccurredAt: event.OccurredAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) CountActiveUsers(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&activityModel{}).
		Where("occurred_at >= ?", since.UTC()).
		Distinct("user_id").
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

type userModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex:idx_users_email"`
	Name         string    `gorm:"column:name"`
	Bio          string    `gorm:"column:bio"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user entities.User) userModel {
	return userModel{
		UserID:       user.UserID,
		Email:        strings.ToLower(user.Email),
		Name:         user.Name,
		Bio:          user.Bio,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:       m.UserID,
		Email:        m.Email,
		Name:         m.Name,
		Bio:          m.Bio,
		PasswordHash: m.PasswordHash,
		Role:         gate.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type activityModel struct {
	EventID    string    `gorm:"column:event_id;primaryKey"`
	UserID     string    `gorm:"column:user_id;index"`
	Kind       string    `gorm:"column:kind"`
	OccurredAt time.Time `gorm:"column:occurred_at;index"`
}

func (activityModel) TableName() string {
	return "user_activity_events"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

var _ ports.Repository = (*Repository)(nil)
