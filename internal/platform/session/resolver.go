package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"lyceum/internal/shared/gate"
)

// RoleLookup returns the stored role of a user. found=false means the account
// no longer exists.
type RoleLookup func(ctx context.Context, userID string) (role gate.Role, found bool, err error)

// Resolver turns request credentials into a principal. It never fails a
// request: anything short of a valid, unrevoked token for an existing user is
// anonymous.
type Resolver struct {
	Manager    *Manager
	CookieName string
	LookupRole RoleLookup
	Logger     *slog.Logger
}

func (r Resolver) Resolve(req *http.Request) *gate.Principal {
	raw := r.TokenFromRequest(req)
	if raw == "" {
		return nil
	}
	ctx := req.Context()
	claims, err := r.Manager.Verify(ctx, raw)
	if err != nil {
		r.logger().DebugContext(ctx, "session rejected",
			"event", "session_rejected",
			"module", "internal/platform/session",
			"layer", "platform",
			"reason", err.Error(),
		)
		return nil
	}

	role, ok := gate.ParseRole(claims.Role)
	if !ok {
		return nil
	}
	if r.LookupRole != nil {
		stored, found, err := r.LookupRole(ctx, claims.Subject)
		if err != nil {
			r.logger().WarnContext(ctx, "session role lookup failed",
				"event", "session_role_lookup_failed",
				"module", "internal/platform/session",
				"layer", "platform",
				"user_id", claims.Subject,
				"error", err.Error(),
			)
			return nil
		}
		if !found {
			return nil
		}
		role = stored
	}
	return &gate.Principal{ID: claims.Subject, Role: role}
}

// TokenFromRequest prefers the session cookie over the Authorization header.
func (r Resolver) TokenFromRequest(req *http.Request) string {
	name := r.CookieName
	if name == "" {
		name = "session_token"
	}
	if cookie, err := req.Cookie(name); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (r Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
