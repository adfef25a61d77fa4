package httpserver

import (
	"net/http"

	admindashboardhttp "lyceum/contexts/internal-ops/admin-dashboard-service/transport/http"
)

func (s *Server) registerAdminRoutes() {
	s.mux.HandleFunc("GET /api/v1/admin/analytics", s.handleAnalytics)
	s.mux.HandleFunc("GET /api/v1/admin/audit-logs", s.handleListAuditLogs)
}

// handleAnalytics godoc
// @Summary Platform counters (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} admindashboardhttp.AnalyticsResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /api/v1/admin/analytics [get]
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var resp admindashboardhttp.AnalyticsResponse
	resp, err := s.modules.Admin.Handler.AnalyticsHandler(r.Context(), principalOf(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListAuditLogs godoc
// @Summary Recent admin actions (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "maximum results"
// @Success 200 {object} admindashboardhttp.ListAuditLogsResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /api/v1/admin/audit-logs [get]
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	_, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Admin.Handler.ListAuditLogsHandler(r.Context(), principalOf(r), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
