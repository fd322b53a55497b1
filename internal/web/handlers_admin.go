package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/hireload/internal/core"
	"github.com/JonMunkholm/hireload/internal/logging"
)

// healthTimeout bounds the database ping of the health check.
const healthTimeout = 2 * time.Second

// resetTimeout is the maximum duration for a reset.
const resetTimeout = 30 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database"`
	Uploads  core.UploadLimiterStatus `json:"uploads"`
}

// handleHealth pings the database. It answers 503 when the ping fails so
// load balancers stop routing to the instance.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Database: "ok", Uploads: s.service.UploadStatus()}
	status := http.StatusOK

	if err := s.db.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, r, status, resp)
}

// handleReset truncates every table. Only mounted when Admin.EnableReset is
// set.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), resetTimeout)
	defer cancel()

	if err := s.db.Truncate(ctx); err != nil {
		respondError(w, r, fmt.Errorf("%w: reset: %w", core.ErrStorageUnavailable, err), 0)
		return
	}

	logging.FromContext(r.Context()).Warn("database reset", "ip", r.RemoteAddr)
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Database reset successfully"})
}
