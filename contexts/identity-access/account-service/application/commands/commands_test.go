package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"lyceum/contexts/identity-access/account-service/adapters/memory"
	"lyceum/contexts/identity-access/account-service/application/commands"
	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash string, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeSessions struct {
	issued  []gate.Principal
	revoked []string
}

func (f *fakeSessions) Issue(_ context.Context, principal gate.Principal) (ports.Session, error) {
	f.issued = append(f.issued, principal)
	return ports.Session{Token: "tok-" + principal.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

type fakeAudit struct {
	changes []ports.RoleChange
	err     error
}

func (f *fakeAudit) RecordRoleChange(_ context.Context, change ports.RoleChange) error {
	if f.err != nil {
		return f.err
	}
	f.changes = append(f.changes, change)
	return nil
}

// spyStore counts role updates so denial paths can prove no write happened.
type spyStore struct {
	*memory.Store
	roleUpdates []string
}

func (s *spyStore) UpdateRole(ctx context.Context, userID string, role gate.Role, now time.Time) (entities.User, error) {
	s.roleUpdates = append(s.roleUpdates, userID)
	return s.Store.UpdateRole(ctx, userID, role, now)
}

func seededStore() *spyStore {
	store := memory.NewStore()
	store.SeedUser(entities.User{UserID: "u1", Email: "u1@example.com", Name: "Ulla", PasswordHash: "hashed:password-one", Role: gate.RoleUser})
	store.SeedUser(entities.User{UserID: "u9", Email: "u9@example.com", Name: "Nine", PasswordHash: "hashed:password-nine", Role: gate.RoleUser})
	store.SeedUser(entities.User{UserID: "admin1", Email: "admin@example.com", Name: "Admin", PasswordHash: "hashed:admin-pass", Role: gate.RoleAdmin})
	return &spyStore{Store: store}
}

var (
	u1    = &gate.Principal{ID: "u1", Role: gate.RoleUser}
	u9    = &gate.Principal{ID: "u9", Role: gate.RoleUser}
	admin = &gate.Principal{ID: "admin1", Role: gate.RoleAdmin}
)

func TestRegisterAndDuplicateEmail(t *testing.T) {
	store := seededStore()
	uc := commands.RegisterUseCase{Repository: store, Hasher: plainHasher{}, IDGenerator: store}

	user, err := uc.Execute(context.Background(), commands.RegisterCommand{Email: " New@Example.com ", Name: "New", Password: "longenough"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "new@example.com" || user.Role != gate.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}

	_, err = uc.Execute(context.Background(), commands.RegisterCommand{Email: "new@example.com", Name: "Again", Password: "longenough"})
	if !errors.Is(err, domainerrors.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}

	_, err = uc.Execute(context.Background(), commands.RegisterCommand{Email: "short@example.com", Name: "S", Password: "short"})
	if details := validation.Details(err); !errors.Is(err, domainerrors.ErrInvalidRequest) || len(details) != 1 || details[0].Field != "password" {
		t.Fatalf("expected password validation error, got %v", err)
	}
}

func TestLoginIssuesSessionAndRecordsActivity(t *testing.T) {
	store := seededStore()
	sessions := &fakeSessions{}
	uc := commands.LoginUseCase{Repository: store, Hasher: plainHasher{}, Sessions: sessions, IDGenerator: store}

	result, err := uc.Execute(context.Background(), commands.LoginCommand{Email: "U1@example.com", Password: "password-one"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Session.Token != "tok-u1" || len(sessions.issued) != 1 || sessions.issued[0].Role != gate.RoleUser {
		t.Fatalf("unexpected session: %+v issued=%+v", result.Session, sessions.issued)
	}
	active, err := store.CountActiveUsers(context.Background(), time.Now().Add(-time.Hour))
	if err != nil || active != 1 {
		t.Fatalf("expected one active user, got %d %v", active, err)
	}

	if _, err := uc.Execute(context.Background(), commands.LoginCommand{Email: "u1@example.com", Password: "wrong"}); !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), commands.LoginCommand{Email: "ghost@example.com", Password: "x"}); !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestLogoutRequiresSession(t *testing.T) {
	store := seededStore()
	sessions := &fakeSessions{}
	uc := commands.LogoutUseCase{Repository: store, Sessions: sessions, IDGenerator: store}

	if err := uc.Execute(context.Background(), nil, "tok"); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if err := uc.Execute(context.Background(), u1, "tok-u1"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "tok-u1" {
		t.Fatalf("expected token revoked, got %v", sessions.revoked)
	}
}

func TestAdminUpdatesRoleOfOtherUser(t *testing.T) {
	store := seededStore()
	audit := &fakeAudit{}
	uc := commands.UpdateRoleUseCase{Repository: store, Audit: audit}

	user, err := uc.Execute(context.Background(), admin, commands.UpdateRoleCommand{UserID: "u9", Role: "banned", Reason: "spam", SourceIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("update role failed: %v", err)
	}
	if user.UserID != "u9" || user.Role != gate.RoleBanned {
		t.Fatalf("unexpected user: %+v", user)
	}
	if len(store.roleUpdates) != 1 || store.roleUpdates[0] != "u9" {
		t.Fatalf("expected one update(u9), got %v", store.roleUpdates)
	}
	if len(audit.changes) != 1 || audit.changes[0].OldRole != gate.RoleUser || audit.changes[0].NewRole != gate.RoleBanned {
		t.Fatalf("unexpected audit: %+v", audit.changes)
	}
}

func TestUpdateRoleDenials(t *testing.T) {
	store := seededStore()
	uc := commands.UpdateRoleUseCase{Repository: store, Audit: &fakeAudit{}}
	ctx := context.Background()

	if _, err := uc.Execute(ctx, nil, commands.UpdateRoleCommand{UserID: "u9", Role: "admin"}); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := uc.Execute(ctx, u1, commands.UpdateRoleCommand{UserID: "u9", Role: "admin"}); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := uc.Execute(ctx, admin, commands.UpdateRoleCommand{UserID: "admin1", Role: "user"}); !errors.Is(err, domainerrors.ErrSelfRoleChange) {
		t.Fatalf("expected self role change rejection, got %v", err)
	}
	if _, err := uc.Execute(ctx, admin, commands.UpdateRoleCommand{UserID: "u9", Role: "root"}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid role, got %v", err)
	}
	if len(store.roleUpdates) != 0 {
		t.Fatalf("expected no role writes, got %v", store.roleUpdates)
	}
}

func TestChangePassword(t *testing.T) {
	store := seededStore()
	uc := commands.ChangePasswordUseCase{Repository: store, Hasher: plainHasher{}, IDGenerator: store}
	ctx := context.Background()

	err := uc.Execute(ctx, u9, commands.ChangePasswordCommand{UserID: "u1", CurrentPassword: "password-one", NewPassword: "new-password"})
	if !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	err = uc.Execute(ctx, u1, commands.ChangePasswordCommand{UserID: "u1", CurrentPassword: "nope", NewPassword: "new-password"})
	if details := validation.Details(err); len(details) != 1 || details[0].Field != "current_password" {
		t.Fatalf("expected current_password rejection, got %v", err)
	}

	if err := uc.Execute(ctx, u1, commands.ChangePasswordCommand{UserID: "u1", CurrentPassword: "password-one", NewPassword: "new-password"}); err != nil {
		t.Fatalf("owner change failed: %v", err)
	}
	if err := uc.Execute(ctx, admin, commands.ChangePasswordCommand{UserID: "u1", NewPassword: "admin-reset-1"}); err != nil {
		t.Fatalf("admin reset failed: %v", err)
	}
	user, _ := store.GetUser(ctx, "u1")
	if user.PasswordHash != "hashed:admin-reset-1" {
		t.Fatalf("expected admin reset to apply, got %q", user.PasswordHash)
	}

	if err := uc.Execute(ctx, admin, commands.ChangePasswordCommand{UserID: "ghost", NewPassword: "whatever-1"}); !errors.Is(err, gate.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProfileAndDelete(t *testing.T) {
	store := seededStore()
	ctx := context.Background()
	update := commands.UpdateProfileUseCase{Repository: store, IDGenerator: store}
	remove := commands.DeleteUserUseCase{Repository: store}
	bio := "Teaches Go."

	if _, err := update.Execute(ctx, u9, commands.UpdateProfileCommand{UserID: "u1", Bio: &bio}); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	user, err := update.Execute(ctx, u1, commands.UpdateProfileCommand{UserID: "u1", Bio: &bio})
	if err != nil || user.Bio != bio {
		t.Fatalf("owner update failed: %+v %v", user, err)
	}

	if err := remove.Execute(ctx, nil, "u1"); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if err := remove.Execute(ctx, u1, "u1"); err != nil {
		t.Fatalf("self delete failed: %v", err)
	}
	if err := remove.Execute(ctx, admin, "u1"); !errors.Is(err, gate.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestPasswordLimitCountsBytes(t *testing.T) {
	store := seededStore()
	ctx := context.Background()
	multibyte := strings.Repeat("é", 72)

	register := commands.RegisterUseCase{Repository: store, Hasher: plainHasher{}, IDGenerator: store}
	_, err := register.Execute(ctx, commands.RegisterCommand{Email: "long@example.com", Name: "Long", Password: multibyte})
	if details := validation.Details(err); !errors.Is(err, domainerrors.ErrInvalidRequest) || len(details) != 1 || details[0].Field != "password" {
		t.Fatalf("expected password byte limit rejection, got %v", err)
	}
	if _, err := store.GetUserByEmail(ctx, "long@example.com"); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected no user created, got %v", err)
	}

	change := commands.ChangePasswordUseCase{Repository: store, Hasher: plainHasher{}, IDGenerator: store}
	err = change.Execute(ctx, u1, commands.ChangePasswordCommand{UserID: "u1", CurrentPassword: "password-one", NewPassword: multibyte})
	if details := validation.Details(err); !errors.Is(err, domainerrors.ErrInvalidRequest) || len(details) != 1 || details[0].Field != "new_password" {
		t.Fatalf("expected new_password byte limit rejection, got %v", err)
	}

	if _, err := register.Execute(ctx, commands.RegisterCommand{Email: "edge@example.com", Name: "Edge", Password: strings.Repeat("é", 36)}); err != nil {
		t.Fatalf("72-byte password must be accepted: %v", err)
	}
}

func TestUpdateRoleAuditFailureStillReportsChange(t *testing.T) {
	store := seededStore()
	logs := &strings.Builder{}
	uc := commands.UpdateRoleUseCase{
		Repository: store,
		Audit:      &fakeAudit{err: errors.New("audit table unavailable")},
		Logger:     slog.New(slog.NewJSONHandler(logs, nil)),
	}

	user, err := uc.Execute(context.Background(), admin, commands.UpdateRoleCommand{UserID: "u9", Role: "banned", Reason: "spam"})
	if err != nil {
		t.Fatalf("committed role change must not surface audit failure, got %v", err)
	}
	if user.Role != gate.RoleBanned {
		t.Fatalf("expected banned user returned, got %+v", user)
	}
	stored, err := store.GetUser(context.Background(), "u9")
	if err != nil || stored.Role != gate.RoleBanned {
		t.Fatalf("expected stored role banned, got %+v %v", stored, err)
	}
	if !strings.Contains(logs.String(), `"event":"account_role_audit_failed"`) || !strings.Contains(logs.String(), "audit table unavailable") {
		t.Fatalf("expected audit failure logged, got %s", logs.String())
	}
}
