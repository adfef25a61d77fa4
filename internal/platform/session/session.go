// Package session issues and verifies the signed session tokens carried in the
// session cookie or an Authorization bearer header.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"lyceum/internal/shared/gate"
)

var (
	ErrInvalidToken = errors.New("session: invalid token")
	ErrRevoked      = errors.New("session: token revoked")
)

// Claims is the JWT payload. Subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Token is an issued session.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Manager struct {
	secret      []byte
	ttl         time.Duration
	issuer      string
	revocations RevocationStore
	now         func() time.Time
}

type Options struct {
	Secret      []byte
	TTL         time.Duration
	Issuer      string
	Revocations RevocationStore
	// Now overrides the issue time. Verification always uses wall-clock time.
	Now func() time.Time
}

func NewManager(opts Options) (*Manager, error) {
	if len(opts.Secret) < 32 {
		return nil, errors.New("session: secret must be at least 32 bytes")
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Issuer == "" {
		opts.Issuer = "lyceum"
	}
	if opts.Revocations == nil {
		opts.Revocations = NewMemoryRevocations()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		secret:      opts.Secret,
		ttl:         opts.TTL,
		issuer:      opts.Issuer,
		revocations: opts.Revocations,
		now:         opts.Now,
	}, nil
}

func (m *Manager) Issue(_ context.Context, principal gate.Principal) (Token, error) {
	if principal.ID == "" {
		return Token{}, errors.New("session: principal id is required")
	}
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)
	tokenID := uuid.NewString()
	claims := Claims{
		Role: string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   principal.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("session: sign token: %w", err)
	}
	return Token{Value: signed, ID: tokenID, ExpiresAt: expiresAt}, nil
}

// Verify checks signature, algorithm, issuer, expiry and revocation.
func (m *Manager) Verify(ctx context.Context, raw string) (Claims, error) {
	claims, err := m.parse(raw)
	if err != nil {
		return Claims{}, err
	}
	revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Claims{}, fmt.Errorf("session: revocation lookup: %w", err)
	}
	if revoked {
		return Claims{}, ErrRevoked
	}
	return claims, nil
}

// Revoke blocks the token until its natural expiry. Tokens that no longer
// verify are already unusable and are ignored.
func (m *Manager) Revoke(ctx context.Context, raw string) error {
	claims, err := m.parse(raw)
	if err != nil {
		return nil
	}
	return m.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (m *Manager) parse(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil || !claims.VerifyIssuer(m.issuer, true) {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
