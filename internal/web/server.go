// Package web provides the HTTP API of the hiring data loader.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/hireload/internal/config"
	"github.com/JonMunkholm/hireload/internal/core"
	webmw "github.com/JonMunkholm/hireload/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Reports is the read side used by the metrics endpoints.
// Satisfied by *core.Aggregator.
type Reports interface {
	QuarterlyHiring(ctx context.Context, year int) ([]core.QuarterlyHiring, error)
	DepartmentsAboveMean(ctx context.Context, year int) ([]core.DepartmentHires, error)
}

// Database is the storage surface needed by the health and admin endpoints.
type Database interface {
	Ping(ctx context.Context) error
	Truncate(ctx context.Context) error
}

// Server is the HTTP server for the loader API.
type Server struct {
	service *core.Service
	reports Reports
	db      Database
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, reports Reports, db Database, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		reports: reports,
		db:      db,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(config.SplitList(s.cfg.Server.TrustedProxies)))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins: config.SplitList(s.cfg.Server.CORSOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler)
	s.router.Use(securityHeaders)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	if s.cfg.Rate.Enabled {
		s.router.Use(webmw.RateLimit(s.cfg.Rate.RequestsPerMinute, rateLimited))
	}
}

// setupRoutes configures all HTTP routes. API routes live under
// Server.BasePath; health and Prometheus stay at the root for probes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}

	api := func(r chi.Router) {
		r.Get("/tables", s.handleListTables)
		r.Get("/uploads/status", s.handleUploadStatus)

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(webmw.RateLimit(s.cfg.Rate.UploadLimit, rateLimited))
			}
			r.Post("/upload/{entity}", s.handleUpload)
		})

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/quarterly-hiring", s.handleQuarterlyHiring)
			r.Get("/departments-above-mean", s.handleDepartmentsAboveMean)
		})

		if s.cfg.Admin.EnableReset {
			r.Post("/admin/reset", s.handleReset)
		}
	}

	if base := s.cfg.Server.BasePath; base != "" {
		s.router.Route(base, api)
	} else {
		api(s.router)
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr, "base_path", s.cfg.Server.BasePath)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimited writes the 429 response for webmw.RateLimit.
func rateLimited(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
	respondError(w, r, errRateLimited, http.StatusTooManyRequests)
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode error", "path", r.URL.Path, "error", err)
	}
}
