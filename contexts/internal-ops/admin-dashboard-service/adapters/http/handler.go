package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"lyceum/contexts/internal-ops/admin-dashboard-service/application"
	httptransport "lyceum/contexts/internal-ops/admin-dashboard-service/transport/http"
	"lyceum/internal/shared/gate"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) AnalyticsHandler(ctx context.Context, principal *gate.Principal) (httptransport.AnalyticsResponse, error) {
	stats, err := h.Service.Analytics(ctx, principal)
	if err != nil {
		return httptransport.AnalyticsResponse{}, err
	}
	return httptransport.AnalyticsResponse{
		TotalUsers:        stats.TotalUsers,
		ActiveUsers:       stats.ActiveUsers,
		BannedUsers:       stats.BannedUsers,
		AdminUsers:        stats.AdminUsers,
		TotalProducts:     stats.TotalProducts,
		TotalDatasets:     stats.TotalDatasets,
		TotalPurchases:    stats.TotalPurchases,
		TotalRevenueCents: stats.TotalRevenueCents,
		GeneratedAt:       stats.GeneratedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) ListAuditLogsHandler(ctx context.Context, principal *gate.Principal, limit int) (httptransport.ListAuditLogsResponse, error) {
	rows, err := h.Service.ListAuditLogs(ctx, principal, limit)
	if err != nil {
		return httptransport.ListAuditLogsResponse{}, err
	}
	resp := httptransport.ListAuditLogsResponse{Logs: make([]httptransport.AuditLogDTO, 0, len(rows))}
	for _, row := range rows {
		resp.Logs = append(resp.Logs, httptransport.AuditLogDTO{
			AuditID:       row.AuditID,
			ActorID:       row.ActorID,
			Action:        row.Action,
			TargetID:      row.TargetID,
			OldValue:      row.OldValue,
			NewValue:      row.NewValue,
			Justification: row.Justification,
			SourceIP:      row.SourceIP,
			OccurredAt:    row.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}
