package ports

import (
	"context"
	"time"

	"lyceum/contexts/identity-access/account-service/domain/entities"
	"lyceum/internal/shared/gate"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for users and activity rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionIssuer mints and revokes session tokens for authenticated users.
type SessionIssuer interface {
	Issue(ctx context.Context, principal gate.Principal) (Session, error)
	Revoke(ctx context.Context, token string) error
}

type RoleChange struct {
	AdminID      string
	TargetUserID string
	OldRole      gate.Role
	NewRole      gate.Role
	Reason       string
	SourceIP     string
	ChangedAt    time.Time
}

// AuditRecorder persists admin actions outside this context.
type AuditRecorder interface {
	RecordRoleChange(ctx context.Context, change RoleChange) error
}

type ProfilePatch struct {
	Name *string
	Bio  *string
}

type UserFilter struct {
	Role  gate.Role
	Page  int
	Limit int
}

type UserCounts struct {
	Total  int64
	Admins int64
	Banned int64
}

// Repository is the write/read boundary for account state.
type Repository interface {
	CreateUser(ctx context.Context, user entities.User) (entities.User, error)
	GetUser(ctx context.Context, userID string) (entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (entities.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]entities.User, int, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch, now time.Time) (entities.User, error)
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string, now time.Time) error
	UpdateRole(ctx context.Context, userID string, role gate.Role, now time.Time) (entities.User, error)
	DeleteUser(ctx context.Context, userID string) error
	CountUsers(ctx context.Context) (UserCounts, error)
	RecordActivity(ctx context.Context, event entities.ActivityEvent) error
	CountActiveUsers(ctx context.Context, since time.Time) (int64, error)
}
