package http

type AnalyticsResponse struct {
	TotalUsers        int64  `json:"total_users"`
	ActiveUsers       int64  `json:"active_users"`
	BannedUsers       int64  `json:"banned_users"`
	AdminUsers        int64  `json:"admin_users"`
	TotalProducts     int64  `json:"total_products"`
	TotalDatasets     int64  `json:"total_datasets"`
	TotalPurchases    int64  `json:"total_purchases"`
	TotalRevenueCents int64  `json:"total_revenue_cents"`
	GeneratedAt       string `json:"generated_at"`
}

type AuditLogDTO struct {
	AuditID       string `json:"audit_id"`
	ActorID       string `json:"actor_id"`
	Action        string `json:"action"`
	TargetID      string `json:"target_id,omitempty"`
	OldValue      string `json:"old_value,omitempty"`
	NewValue      string `json:"new_value,omitempty"`
	Justification string `json:"justification,omitempty"`
	SourceIP      string `json:"source_ip,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

type ListAuditLogsResponse struct {
	Logs []AuditLogDTO `json:"logs"`
}
