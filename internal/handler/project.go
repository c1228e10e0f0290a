package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devnexus/devnexus/internal/dashboard"
	"github.com/devnexus/devnexus/internal/service"
)

// ProjectHandler handles project read operations.
type ProjectHandler struct {
	svc    *service.DevOps
	agg    *dashboard.Aggregator
	logger *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc *service.DevOps, agg *dashboard.Aggregator, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, agg: agg, logger: logger}
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, projects, "Projects retrieved")
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, project, "Project retrieved")
}

// Metrics handles GET /api/projects/{id}/metrics.
func (h *ProjectHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.agg.ProjectStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, metrics, "Project metrics retrieved")
}
