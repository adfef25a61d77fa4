package gate

import (
	"context"
	"strings"
)

// Role is the coarse account role carried by a session.
type Role string

const (
	RoleUser   Role = "user"
	RoleAdmin  Role = "admin"
	RoleBanned Role = "banned"
)

// ParseRole normalizes raw role text. Unknown values report false.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleBanned:
		return RoleBanned, true
	default:
		return "", false
	}
}

// Principal is the authenticated caller of one request.
// It is built once by the session resolver and never mutated afterwards.
type Principal struct {
	ID   string
	Role Role
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

type principalKey struct{}

// WithPrincipal stores the caller in ctx. A nil principal leaves ctx anonymous.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	if principal == nil {
		return ctx
	}
	copied := *principal
	return context.WithValue(ctx, principalKey{}, &copied)
}

// PrincipalFromContext returns the caller stored by the session middleware,
// or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	principal, _ := ctx.Value(principalKey{}).(*Principal)
	if principal == nil {
		return nil
	}
	copied := *principal
	return &copied
}
