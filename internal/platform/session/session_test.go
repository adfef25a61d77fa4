package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyceum/internal/platform/session"
	"lyceum/internal/shared/gate"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func newManager(t *testing.T, opts session.Options) *session.Manager {
	t.Helper()
	if opts.Secret == nil {
		opts.Secret = secret
	}
	manager, err := session.NewManager(opts)
	require.NoError(t, err)
	return manager
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestIssueAndResolve(t *testing.T) {
	t.Parallel()

	manager := newManager(t, session.Options{TTL: time.Hour})
	token, err := manager.Issue(context.Background(), gate.Principal{ID: "u1", Role: gate.RoleUser})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

	resolver := session.Resolver{Manager: manager}
	assert.Equal(t, &gate.Principal{ID: "u1", Role: gate.RoleUser}, resolver.Resolve(bearer(token.Value)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token.Value})
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, "u1", resolver.Resolve(req).ID, "cookie wins over header")
}

func TestResolveTreatsBadCredentialsAsAnonymous(t *testing.T) {
	t.Parallel()

	manager := newManager(t, session.Options{})
	other := newManager(t, session.Options{Secret: []byte("ffffffffffffffffffffffffffffffff")})
	expired := newManager(t, session.Options{TTL: time.Hour, Now: func() time.Time { return time.Now().Add(-3 * time.Hour) }})
	resolver := session.Resolver{Manager: manager}
	ctx := context.Background()

	foreign, err := other.Issue(ctx, gate.Principal{ID: "u1", Role: gate.RoleAdmin})
	require.NoError(t, err)
	stale, err := expired.Issue(ctx, gate.Principal{ID: "u1", Role: gate.RoleUser})
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, session.Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Subject:   "u1",
			Issuer:    "lyceum",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"malformed":    "not-a-jwt",
		"wrong secret": foreign.Value,
		"expired":      stale.Value,
		"alg none":     unsigned,
	} {
		assert.Nil(t, resolver.Resolve(bearer(raw)), name)
	}

	noCreds := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, resolver.Resolve(noCreds))
	basic := httptest.NewRequest(http.MethodGet, "/", nil)
	basic.Header.Set("Authorization", "Basic dTE6cGFzcw==")
	assert.Nil(t, resolver.Resolve(basic))
}

func TestResolveRefreshesRoleFromStore(t *testing.T) {
	t.Parallel()

	manager := newManager(t, session.Options{})
	token, err := manager.Issue(context.Background(), gate.Principal{ID: "u9", Role: gate.RoleUser})
	require.NoError(t, err)

	stored := map[string]gate.Role{"u9": gate.RoleBanned}
	resolver := session.Resolver{
		Manager: manager,
		LookupRole: func(_ context.Context, userID string) (gate.Role, bool, error) {
			role, ok := stored[userID]
			return role, ok, nil
		},
	}
	assert.Equal(t, gate.RoleBanned, resolver.Resolve(bearer(token.Value)).Role)

	delete(stored, "u9")
	assert.Nil(t, resolver.Resolve(bearer(token.Value)), "deleted account resolves anonymous")
}

func TestRevokeMemory(t *testing.T) {
	t.Parallel()

	manager := newManager(t, session.Options{})
	ctx := context.Background()
	token, err := manager.Issue(ctx, gate.Principal{ID: "u1", Role: gate.RoleUser})
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(ctx, token.Value))
	_, err = manager.Verify(ctx, token.Value)
	require.ErrorIs(t, err, session.ErrRevoked)
	require.NoError(t, manager.Revoke(ctx, "garbage"))
}

func TestRevokeRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewRedisRevocations(client, "")
	manager := newManager(t, session.Options{TTL: time.Hour, Revocations: store})
	ctx := context.Background()

	token, err := manager.Issue(ctx, gate.Principal{ID: "u1", Role: gate.RoleUser})
	require.NoError(t, err)
	_, err = manager.Verify(ctx, token.Value)
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(ctx, token.Value))
	_, err = manager.Verify(ctx, token.Value)
	require.ErrorIs(t, err, session.ErrRevoked)
	assert.True(t, mr.Exists("lyceum:session:revoked:"+token.ID))

	mr.FastForward(2 * time.Hour)
	revoked, err := store.IsRevoked(ctx, token.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisOutageResolvesAnonymous(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	manager := newManager(t, session.Options{Revocations: session.NewRedisRevocations(client, "")})
	token, err := manager.Issue(context.Background(), gate.Principal{ID: "u1", Role: gate.RoleUser})
	require.NoError(t, err)

	mr.Close()
	assert.Nil(t, session.Resolver{Manager: manager}.Resolve(bearer(token.Value)))
}
