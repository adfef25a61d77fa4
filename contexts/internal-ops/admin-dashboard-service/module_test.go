package admindashboardservice_test

import (
	"context"
	"errors"
	"testing"

	admindashboardservice "lyceum/contexts/internal-ops/admin-dashboard-service"
	"lyceum/contexts/internal-ops/admin-dashboard-service/application"
	"lyceum/contexts/internal-ops/admin-dashboard-service/ports"
	"lyceum/internal/shared/gate"
)

type staticUsers struct {
	stats ports.UserStats
	calls int
}

func (s *staticUsers) UserStats(context.Context) (ports.UserStats, error) {
	s.calls++
	return s.stats, nil
}

type staticSales struct {
	stats ports.SalesStats
	err   error
}

func (s staticSales) SalesStats(context.Context) (ports.SalesStats, error) {
	return s.stats, s.err
}

type staticDatasets int64

func (d staticDatasets) CountDatasets(context.Context) (int64, error) {
	return int64(d), nil
}

var (
	admin = &gate.Principal{ID: "admin1", Role: gate.RoleAdmin}
	user  = &gate.Principal{ID: "u1", Role: gate.RoleUser}
)

func newModule(users *staticUsers, sales staticSales) admindashboardservice.Module {
	return admindashboardservice.NewInMemoryModule(admindashboardservice.Dependencies{
		Users:    users,
		Sales:    sales,
		Datasets: staticDatasets(4),
	})
}

func TestAnalyticsAggregatesReadModels(t *testing.T) {
	users := &staticUsers{stats: ports.UserStats{TotalUsers: 12, ActiveUsers: 5, BannedUsers: 1, AdminUsers: 2}}
	module := newModule(users, staticSales{stats: ports.SalesStats{TotalProducts: 7, TotalPurchases: 3, TotalRevenueCents: 4497}})

	resp, err := module.Handler.AnalyticsHandler(context.Background(), admin)
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if resp.TotalUsers != 12 || resp.ActiveUsers != 5 || resp.BannedUsers != 1 {
		t.Fatalf("unexpected user counters: %+v", resp)
	}
	if resp.TotalProducts != 7 || resp.TotalDatasets != 4 || resp.TotalPurchases != 3 || resp.TotalRevenueCents != 4497 {
		t.Fatalf("unexpected catalog counters: %+v", resp)
	}
	if resp.GeneratedAt == "" {
		t.Fatalf("expected generated_at")
	}
}

func TestAnalyticsRequiresAdmin(t *testing.T) {
	users := &staticUsers{}
	module := newModule(users, staticSales{})
	ctx := context.Background()

	if _, err := module.Handler.AnalyticsHandler(ctx, nil); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := module.Handler.AnalyticsHandler(ctx, user); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if users.calls != 0 {
		t.Fatalf("read models must not be queried after a denial")
	}
}

func TestAnalyticsPropagatesReadFailure(t *testing.T) {
	module := newModule(&staticUsers{}, staticSales{err: errors.New("sales offline")})

	if _, err := module.Handler.AnalyticsHandler(context.Background(), admin); err == nil || err.Error() != "sales offline" {
		t.Fatalf("expected read failure, got %v", err)
	}
}

func TestAuditLogsNewestFirstAndAdminOnly(t *testing.T) {
	module := newModule(&staticUsers{}, staticSales{})
	ctx := context.Background()

	for _, target := range []string{"u7", "u8", "u9"} {
		if _, err := module.Service.RecordAdminAction(ctx, application.RecordActionInput{
			ActorID:  "admin1",
			Action:   "user.role_change",
			TargetID: target,
			OldValue: "user",
			NewValue: "banned",
		}); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if _, err := module.Service.RecordAdminAction(ctx, application.RecordActionInput{Action: "user.role_change"}); err == nil {
		t.Fatalf("expected missing actor to be rejected")
	}

	if _, err := module.Handler.ListAuditLogsHandler(ctx, user, 10); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	resp, err := module.Handler.ListAuditLogsHandler(ctx, admin, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Logs) != 2 || resp.Logs[0].TargetID != "u9" || resp.Logs[1].TargetID != "u8" {
		t.Fatalf("unexpected logs: %+v", resp.Logs)
	}
}
