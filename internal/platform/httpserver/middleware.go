package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"lyceum/internal/shared/gate"
)

// middleware wraps the mux. Order, outermost first: request id, real ip,
// CORS, session resolution, request log + metrics, panic recovery.
func (s *Server) middleware(next http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	h := middleware.Recoverer(next)
	h = s.observe(h)
	h = s.resolveSession(h)
	h = cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
	h = middleware.RealIP(h)
	return middleware.RequestID(h)
}

// resolveSession stores the caller, if any, in the request context. It never
// rejects a request; the gate does that per operation.
func (s *Server) resolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.Manager == nil {
			next.ServeHTTP(w, r)
			return
		}
		principal := s.sessions.Resolve(r)
		next.ServeHTTP(w, r.WithContext(gate.WithPrincipal(r.Context(), principal)))
	})
}

// observe must wrap the mux directly: the mux sets r.Pattern on the request
// it receives, and that is the value used as the route label.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(started)
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, r.Pattern, status, elapsed)
		}
		s.logger.InfoContext(r.Context(), "http request",
			"event", "http_request",
			"module", "internal/platform/httpserver",
			"layer", "transport",
			"method", r.Method,
			"path", r.URL.Path,
			"route", r.Pattern,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", elapsed.Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
