package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/handler/dto"
	"github.com/devnexus/devnexus/internal/service"
)

// PipelineHandler handles pipeline reads and run triggers.
type PipelineHandler struct {
	svc    *service.DevOps
	logger *slog.Logger
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(svc *service.DevOps, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{svc: svc, logger: logger}
}

// List handles GET /api/pipelines?projectId=X.
func (h *PipelineHandler) List(w http.ResponseWriter, r *http.Request) {
	pipelines, err := h.svc.ListPipelines(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, pipelines, "Pipelines retrieved")
}

// Get handles GET /api/pipelines/{id}.
func (h *PipelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	pipeline, err := h.svc.GetPipeline(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, pipeline, "Pipeline retrieved")
}

// Runs handles GET /api/pipelines/{id}/runs.
func (h *PipelineHandler) Runs(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.ListPipelineRuns(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, runs, "Pipeline runs retrieved")
}

// GetRun handles GET /api/pipelines/{id}/runs/{runId}.
func (h *PipelineHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetPipelineRun(r.Context(), chi.URLParam(r, "runId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, run, "Pipeline run retrieved")
}

// Trigger handles POST /api/pipelines/{id}/run. The request body is
// optional.
func (h *PipelineHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req dto.TriggerRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var triggeredBy string
	if identity := auth.IdentityFromContext(r.Context()); identity != nil {
		triggeredBy = identity.UserName
	}

	run, err := h.svc.TriggerPipelineRun(r.Context(), chi.URLParam(r, "id"), triggeredBy)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("pipeline_triggered",
		"pipeline_id", chi.URLParam(r, "id"),
		"run_id", run.ID,
	)
	writeSuccess(w, http.StatusCreated, run, "Pipeline triggered successfully")
}
