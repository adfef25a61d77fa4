package bootstrap

import (
	"context"

	productapp "lyceum/contexts/catalog/product-service/application"
	account "lyceum/contexts/identity-access/account-service"
	accountports "lyceum/contexts/identity-access/account-service/ports"
	adminapp "lyceum/contexts/internal-ops/admin-dashboard-service/application"
	adminports "lyceum/contexts/internal-ops/admin-dashboard-service/ports"
	"lyceum/internal/platform/session"
	"lyceum/internal/shared/gate"
)

// Contexts never import each other; these adapters translate between their
// ports at the composition root.

// sessionIssuer implements accountports.SessionIssuer over the JWT manager.
type sessionIssuer struct {
	manager *session.Manager
}

func (s sessionIssuer) Issue(ctx context.Context, principal gate.Principal) (accountports.Session, error) {
	token, err := s.manager.Issue(ctx, principal)
	if err != nil {
		return accountports.Session{}, err
	}
	return accountports.Session{Token: token.Value, ExpiresAt: token.ExpiresAt}, nil
}

func (s sessionIssuer) Revoke(ctx context.Context, token string) error {
	return s.manager.Revoke(ctx, token)
}

// auditTrail implements accountports.AuditRecorder over the admin audit log.
type auditTrail struct {
	admin adminapp.Service
}

func (a auditTrail) RecordRoleChange(ctx context.Context, change accountports.RoleChange) error {
	_, err := a.admin.RecordAdminAction(ctx, adminapp.RecordActionInput{
		ActorID:       change.AdminID,
		Action:        "user.role_change",
		TargetID:      change.TargetUserID,
		OldValue:      string(change.OldRole),
		NewValue:      string(change.NewRole),
		Justification: change.Reason,
		SourceIP:      change.SourceIP,
	})
	return err
}

// accountStats reads through a pointer because the account module is built
// after the admin module it reports to.
type accountStats struct {
	accounts *account.Module
}

func (a accountStats) UserStats(ctx context.Context) (adminports.UserStats, error) {
	stats, err := a.accounts.UserStats.Execute(ctx)
	if err != nil {
		return adminports.UserStats{}, err
	}
	return adminports.UserStats{
		TotalUsers:  stats.TotalUsers,
		ActiveUsers: stats.ActiveUsers,
		BannedUsers: stats.BannedUsers,
		AdminUsers:  stats.AdminUsers,
	}, nil
}

type salesStats struct {
	products productapp.Service
}

func (s salesStats) SalesStats(ctx context.Context) (adminports.SalesStats, error) {
	summary, err := s.products.SalesSummary(ctx)
	if err != nil {
		return adminports.SalesStats{}, err
	}
	return adminports.SalesStats{
		TotalProducts:     summary.TotalProducts,
		TotalPurchases:    summary.TotalPurchases,
		TotalRevenueCents: summary.TotalRevenueCents,
	}, nil
}

var (
	_ accountports.SessionIssuer  = sessionIssuer{}
	_ accountports.AuditRecorder  = auditTrail{}
	_ adminports.UserStatsReader  = accountStats{}
	_ adminports.SalesStatsReader = salesStats{}
)
