package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lyceum/contexts/identity-access/account-service/adapters/memory"
	"lyceum/contexts/identity-access/account-service/application/queries"
	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/internal/shared/gate"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var now = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

func seededStore() *memory.Store {
	store := memory.NewStore()
	for _, user := range []entities.User{
		{UserID: "u1", Email: "u1@example.com", Role: gate.RoleUser},
		{UserID: "u2", Email: "u2@example.com", Role: gate.RoleUser},
		{UserID: "u3", Email: "u3@example.com", Role: gate.RoleBanned},
		{UserID: "admin1", Email: "admin@example.com", Role: gate.RoleAdmin},
	} {
		store.SeedUser(user)
	}
	return store
}

func TestUserStatsCountsActivityInWindow(t *testing.T) {
	store := seededStore()
	ctx := context.Background()
	for _, event := range []entities.ActivityEvent{
		{EventID: "e1", UserID: "u1", Kind: entities.ActivityLogin, OccurredAt: now.Add(-time.Hour)},
		{EventID: "e2", UserID: "u1", Kind: entities.ActivityProfileUpdate, OccurredAt: now.Add(-2 * time.Hour)},
		{EventID: "e3", UserID: "u2", Kind: entities.ActivityLogin, OccurredAt: now.Add(-40 * 24 * time.Hour)},
		{EventID: "e4", UserID: "gone", Kind: entities.ActivityLogin, OccurredAt: now.Add(-time.Minute)},
		{EventID: "e5", UserID: "u3", Kind: entities.ActivityLogout, OccurredAt: now.Add(-24 * time.Hour)},
	} {
		if err := store.RecordActivity(ctx, event); err != nil {
			t.Fatalf("record activity: %v", err)
		}
	}

	stats, err := queries.UserStatsUseCase{
		Repository:   store,
		Clock:        fixedClock{now: now},
		ActiveWindow: 30 * 24 * time.Hour,
	}.Execute(ctx)
	if err != nil {
		t.Fatalf("user stats failed: %v", err)
	}
	if stats.TotalUsers != 4 || stats.BannedUsers != 1 || stats.AdminUsers != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.ActiveUsers != 2 {
		t.Fatalf("expected u1 and u3 active, got %d", stats.ActiveUsers)
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	useCase := queries.ListUsersUseCase{Repository: seededStore()}
	ctx := context.Background()

	if _, _, err := useCase.Execute(ctx, nil, queries.ListUsersQuery{}); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, _, err := useCase.Execute(ctx, &gate.Principal{ID: "u1", Role: gate.RoleUser}, queries.ListUsersQuery{}); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, _, err := useCase.Execute(ctx, nil, queries.ListUsersQuery{Role: "owner"}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid role before gate, got %v", err)
	}

	admin := &gate.Principal{ID: "admin1", Role: gate.RoleAdmin}
	banned, total, err := useCase.Execute(ctx, admin, queries.ListUsersQuery{Role: "banned"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(banned) != 1 || banned[0].UserID != "u3" {
		t.Fatalf("unexpected banned list: %d %+v", total, banned)
	}
}

func TestLookupRoleMissingUser(t *testing.T) {
	useCase := queries.LookupRoleUseCase{Repository: seededStore()}

	role, found, err := useCase.Execute(context.Background(), "u3")
	if err != nil || !found || role != gate.RoleBanned {
		t.Fatalf("expected banned u3, got %q %v %v", role, found, err)
	}
	if _, found, err := useCase.Execute(context.Background(), "nobody"); err != nil || found {
		t.Fatalf("expected missing user to be not found without error, got %v %v", found, err)
	}
}
