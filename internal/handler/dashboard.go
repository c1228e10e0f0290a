package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/devnexus/devnexus/internal/dashboard"
)

// DashboardHandler serves aggregated metric snapshots.
type DashboardHandler struct {
	agg    *dashboard.Aggregator
	logger *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(agg *dashboard.Aggregator, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{agg: agg, logger: logger}
}

// Metrics handles GET /api/dashboard/metrics.
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.agg.Overview(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, metrics, "Dashboard metrics retrieved")
}

// RecentActivity handles GET /api/dashboard/recent-activity?count=N.
func (h *DashboardHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Count must be between 1 and 100")
			return
		}
		count = parsed
	}
	if count <= 0 || count > 100 {
		writeError(w, http.StatusBadRequest, "Count must be between 1 and 100")
		return
	}

	activities, err := h.agg.RecentActivity(r.Context(), count)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, activities, "Recent activities retrieved")
}

// PipelineMetrics handles GET /api/dashboard/pipeline-metrics?projectId=X.
func (h *DashboardHandler) PipelineMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.agg.PipelineStats(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, metrics, "Pipeline metrics retrieved")
}

// ProjectSummary handles GET /api/dashboard/project-summary.
func (h *DashboardHandler) ProjectSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.agg.ProjectSummary(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, summary, "Project summary retrieved")
}
