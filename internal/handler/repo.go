package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devnexus/devnexus/internal/service"
)

// RepoHandler handles repository browsing.
type RepoHandler struct {
	svc    *service.DevOps
	logger *slog.Logger
}

// NewRepoHandler creates a new RepoHandler.
func NewRepoHandler(svc *service.DevOps, logger *slog.Logger) *RepoHandler {
	return &RepoHandler{svc: svc, logger: logger}
}

// List handles GET /api/repositories?projectId=X.
func (h *RepoHandler) List(w http.ResponseWriter, r *http.Request) {
	repos, err := h.svc.ListRepos(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, repos, "Repositories retrieved")
}

// Get handles GET /api/repositories/{id}.
func (h *RepoHandler) Get(w http.ResponseWriter, r *http.Request) {
	repo, err := h.svc.GetRepo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, repo, "Repository retrieved")
}

// Branches handles GET /api/repositories/{id}/branches.
func (h *RepoHandler) Branches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.svc.ListBranches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, branches, "Branches retrieved")
}

// Commits handles GET /api/repositories/{id}/commits?branch=X.
func (h *RepoHandler) Commits(w http.ResponseWriter, r *http.Request) {
	branch := r.URL.Query().Get("branch")
	if branch == "" {
		branch = "main"
	}
	commits, err := h.svc.ListCommits(r.Context(), chi.URLParam(r, "id"), branch)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, commits, "Commits retrieved")
}
