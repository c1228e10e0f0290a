package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devnexus/devnexus/internal/handler/dto"
	"github.com/devnexus/devnexus/internal/service"
	"github.com/devnexus/devnexus/internal/store"
)

// WorkItemHandler handles work item CRUD.
type WorkItemHandler struct {
	svc    *service.DevOps
	logger *slog.Logger
}

// NewWorkItemHandler creates a new WorkItemHandler.
func NewWorkItemHandler(svc *service.DevOps, logger *slog.Logger) *WorkItemHandler {
	return &WorkItemHandler{svc: svc, logger: logger}
}

// List handles GET /api/workitems?projectId=X&type=Y.
func (h *WorkItemHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.WorkItemFilter{
		ProjectID: r.URL.Query().Get("projectId"),
		Type:      r.URL.Query().Get("type"),
	}
	items, err := h.svc.ListWorkItems(r.Context(), filter)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, items, "Work items retrieved")
}

// Get handles GET /api/workitems/{id}.
func (h *WorkItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetWorkItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, item, "Work item retrieved")
}

// Create handles POST /api/workitems.
func (h *WorkItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.WorkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := req.Validate(true); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", errs...)
		return
	}

	item, err := h.svc.CreateWorkItem(r.Context(), req.ToModel())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("workitem_created", "work_item_id", item.ID, "project_id", item.ProjectID)
	writeSuccess(w, http.StatusCreated, item, "Work item created successfully")
}

// Update handles PUT /api/workitems/{id}.
func (h *WorkItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.WorkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := req.Validate(false); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", errs...)
		return
	}

	item, err := h.svc.UpdateWorkItem(r.Context(), chi.URLParam(r, "id"), req.ToModel())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, item, "Work item updated successfully")
}

// Delete handles DELETE /api/workitems/{id}.
func (h *WorkItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteWorkItem(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("workitem_deleted", "work_item_id", id)
	writeSuccess(w, http.StatusOK, true, "Work item deleted successfully")
}
