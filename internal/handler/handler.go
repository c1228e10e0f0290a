// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/store"
)

// APIResponse is the uniform response envelope. Every endpoint, success
// or failure, answers in this shape.
type APIResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data"`
	Errors  []string `json:"errors,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// writeSuccess writes a success envelope.
func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError writes a failure envelope.
func writeError(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// handleServiceError maps domain errors onto HTTP statuses. Unknown
// errors become an opaque 500.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, store.ErrPipelineNotFound):
		writeError(w, http.StatusNotFound, "Pipeline not found")
	case errors.Is(err, store.ErrRunNotFound):
		writeError(w, http.StatusNotFound, "Pipeline run not found")
	case errors.Is(err, store.ErrWorkItemNotFound):
		writeError(w, http.StatusNotFound, "Work item not found")
	case errors.Is(err, store.ErrRepoNotFound):
		writeError(w, http.StatusNotFound, "Repository not found")
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Invalid or missing token")
	case errors.Is(err, auth.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Authentication is not available")
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// NotFound handles 404 responses for unmatched routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
