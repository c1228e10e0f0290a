package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db    HealthChecker
	cache HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for db or cache if they are not configured.
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint. No dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint. It checks configured
// dependencies and returns 200 only if all are healthy.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["postgres"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "not configured"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status := http.StatusOK
	resp := HealthResponse{Status: "ready", Checks: checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		resp.Status = "degraded"
	}
	writeJSON(w, status, resp)
}

// SystemStatus is the authenticated health view for the dashboard. It
// always answers 200 with per-service states in the response envelope.
//
// GET /api/dashboard/health
func (h *HealthHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := map[string]string{
		"database": "Not Configured",
		"cache":    "Not Configured",
	}
	status := "Healthy"

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			services["database"] = "Unavailable"
			status = "Degraded"
		} else {
			services["database"] = "Connected"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			services["cache"] = "Unavailable"
			status = "Degraded"
		} else {
			services["cache"] = "Connected"
		}
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
		"services":  services,
	}, "System health check completed")
}
