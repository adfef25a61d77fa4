package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	cryptoadapter "lyceum/contexts/identity-access/account-service/adapters/crypto"
	"lyceum/contexts/identity-access/account-service/domain/entities"
	"lyceum/internal/app/bootstrap"
	"lyceum/internal/platform/config"
	"lyceum/internal/shared/gate"
)

func newMemoryApp(t *testing.T) (*bootstrap.App, http.Handler) {
	t.Helper()
	app, err := bootstrap.Build(context.Background(), config.Config{
		ServiceName:       "lyceum-test",
		StorageDriver:     config.StorageMemory,
		SessionSecret:     "0123456789abcdef0123456789abcdef",
		SessionTTL:        time.Hour,
		SessionCookieName: "session_token",
		ActiveUserWindow:  24 * time.Hour,
	}, nil)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	hash, err := cryptoadapter.BcryptHasher{Cost: bcrypt.MinCost}.Hash("admin-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	app.Modules.Accounts.Store.SeedUser(entities.User{
		UserID:       "admin1",
		Email:        "admin@example.com",
		Name:         "Admin",
		PasswordHash: hash,
		Role:         gate.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	})
	return app, app.Server().Handler()
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	rec := call(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("decode login: %v", err)
	}
	return resp.Token
}

func TestMemoryAppEndToEnd(t *testing.T) {
	_, h := newMemoryApp(t)

	rec := call(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "ada@example.com", "name": "Ada", "password": "correct-horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	var user struct {
		UserID string `json:"user_id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &user)

	ada := login(t, h, "ada@example.com", "correct-horse")
	admin := login(t, h, "admin@example.com", "admin-password")

	rec = call(t, h, http.MethodPost, "/api/v1/products", ada, map[string]any{
		"name": "Go in Practice", "product_type": "ebook", "price_cents": 1999,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: %d %s", rec.Code, rec.Body.String())
	}

	if rec := call(t, h, http.MethodGet, "/api/v1/admin/analytics", ada, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected analytics forbidden for user, got %d", rec.Code)
	}

	rec = call(t, h, http.MethodPatch, "/api/v1/admin/users/"+user.UserID+"/role", admin, map[string]string{
		"role": "banned", "reason": "spam",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("role change: %d %s", rec.Code, rec.Body.String())
	}

	// The stored role wins over the role baked into Ada's token.
	rec = call(t, h, http.MethodPost, "/api/v1/datasets", ada, map[string]any{"title": "Iris"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected banned dataset create forbidden, got %d %s", rec.Code, rec.Body.String())
	}

	rec = call(t, h, http.MethodGet, "/api/v1/admin/audit-logs", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit logs: %d", rec.Code)
	}
	var logs struct {
		Logs []struct {
			Action   string `json:"action"`
			TargetID string `json:"target_id"`
			NewValue string `json:"new_value"`
		} `json:"logs"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &logs)
	if len(logs.Logs) != 1 || logs.Logs[0].TargetID != user.UserID || logs.Logs[0].NewValue != "banned" {
		t.Fatalf("unexpected audit logs: %+v", logs.Logs)
	}

	rec = call(t, h, http.MethodGet, "/api/v1/admin/analytics", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics: %d %s", rec.Code, rec.Body.String())
	}
	var stats struct {
		TotalUsers    int64 `json:"total_users"`
		ActiveUsers   int64 `json:"active_users"`
		BannedUsers   int64 `json:"banned_users"`
		TotalProducts int64 `json:"total_products"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.TotalUsers != 2 || stats.ActiveUsers != 2 || stats.BannedUsers != 1 || stats.TotalProducts != 1 {
		t.Fatalf("unexpected analytics: %+v", stats)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	_, h := newMemoryApp(t)
	admin := login(t, h, "admin@example.com", "admin-password")

	if rec := call(t, h, http.MethodGet, "/api/v1/users/me", admin, nil); rec.Code != http.StatusOK {
		t.Fatalf("me before logout: %d", rec.Code)
	}
	rec := call(t, h, http.MethodPost, "/api/v1/auth/logout", admin, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d %s", rec.Code, rec.Body.String())
	}
	if rec := call(t, h, http.MethodGet, "/api/v1/users/me", admin, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be anonymous, got %d", rec.Code)
	}
}

func TestModelsCoverEveryContext(t *testing.T) {
	sets := bootstrap.Models()
	if len(sets) != 4 {
		t.Fatalf("expected four model sets, got %d", len(sets))
	}
	for i, set := range sets {
		if len(set) == 0 {
			t.Fatalf("model set %d is empty", i)
		}
	}
}

func TestRegisterMultibytePasswordOverBcryptLimit(t *testing.T) {
	_, h := newMemoryApp(t)

	rec := call(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "long@example.com", "name": "Long", "password": strings.Repeat("é", 72),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"field":"password"`) {
		t.Fatalf("expected password detail, got %s", rec.Body.String())
	}
}
