// Package web provides the HTTP report server. Every request runs a fresh
// audit of the configured categories; nothing is stored between requests.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/fulfillaudit/internal/config"
	"github.com/JonMunkholm/fulfillaudit/internal/core"
	"github.com/JonMunkholm/fulfillaudit/internal/logging"
	"github.com/JonMunkholm/fulfillaudit/internal/metrics"
	appmw "github.com/JonMunkholm/fulfillaudit/internal/web/middleware"
)

// Server is the HTTP server for audit reports.
type Server struct {
	cfg     config.ServerConfig
	specs   []core.RunSpec
	opts    []core.Option
	limiter *core.AuditLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server auditing specs. Runner options (loader, finder,
// clock) are applied to every audit; the request logger and the metrics
// recorder are added per request.
func NewServer(cfg config.ServerConfig, specs []core.RunSpec, opts ...core.Option) *Server {
	s := &Server{
		cfg:     cfg,
		specs:   specs,
		opts:    opts,
		limiter: core.NewAuditLimiter(cfg.AuditWait),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.RequestTimeout + cfg.ReadTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleReport)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/audit", s.handleAudit)
		r.Get("/policies", s.handlePolicies)
		r.Get("/rules", s.handleRules)
		r.Get("/status", s.handleStatus)
	})
}

// Start begins listening for HTTP requests. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	slog.Info("server starting", "addr", s.cfg.Addr())
	return s.server.ListenAndServe()
}

// Shutdown waits for a running audit to finish, then stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter.Status().Running {
		slog.Info("waiting for audit to complete")
		if err := s.limiter.WaitForDrain(ctx); err != nil {
			slog.Warn("audit did not complete in time", "error", err)
		}
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// runner builds a Runner logging with the request's context.
func (s *Server) runner(ctx context.Context) *core.Runner {
	opts := append([]core.Option{
		core.WithRecorder(metrics.Recorder{}),
		core.WithLogger(logging.FromContext(ctx)),
	}, s.opts...)
	return core.NewRunner(opts...)
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// The report page carries its own inline stylesheet and no scripts
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
