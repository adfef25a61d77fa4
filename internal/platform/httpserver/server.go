package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	datasetservice "lyceum/contexts/catalog/dataset-service"
	productservice "lyceum/contexts/catalog/product-service"
	account "lyceum/contexts/identity-access/account-service"
	admindashboardservice "lyceum/contexts/internal-ops/admin-dashboard-service"
	_ "lyceum/internal/platform/httpserver/docs"
	"lyceum/internal/platform/metrics"
	"lyceum/internal/platform/session"
)

// Modules are the context handlers served by the API.
type Modules struct {
	Accounts account.Module
	Products productservice.Module
	Datasets datasetservice.Module
	Admin    admindashboardservice.Module
}

type Options struct {
	Addr               string
	Sessions           session.Resolver
	SecureCookies      bool
	CORSAllowedOrigins []string
	Metrics            *metrics.Metrics
	Logger             *slog.Logger
}

type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	logger   *slog.Logger
	addr     string
	modules  Modules
	sessions session.Resolver
	secure   bool
	metrics  *metrics.Metrics
}

func New(modules Modules, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   opts.Logger,
		addr:     opts.Addr,
		modules:  modules,
		sessions: opts.Sessions,
		secure:   opts.SecureCookies,
		metrics:  opts.Metrics,
	}
	s.registerRoutes()
	s.handler = s.middleware(s.mux, opts.CORSAllowedOrigins)
	return s
}

// Handler exposes the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", s.addr,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.registerAccountRoutes()
	s.registerProductRoutes()
	s.registerDatasetRoutes()
	s.registerAdminRoutes()
}

// handleHealth godoc
// @Summary Liveness check
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
