package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/handler/dto"
)

// AuthHandler handles login, logout, refresh, and profile requests.
type AuthHandler struct {
	svc    *auth.Service
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", errs...)
		return
	}

	result, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToLoginResponse(result), "Login successful")
}

// Logout handles POST /api/auth/logout. Tokens are not tracked server
// side, so logout is a client-side discard; the endpoint exists so
// clients have a uniform call to make.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, nil, "Logout successful")
}

// Refresh handles POST /api/auth/refresh. The presented access token
// must still be valid; there is no separate refresh-token exchange.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tokenString := req.Token
	if tokenString == "" {
		tokenString = bearerToken(r)
	}
	if tokenString == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", "token is required")
		return
	}

	result, err := h.svc.Refresh(r.Context(), tokenString)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToLoginResponse(result), "Token refreshed")
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	user, err := h.svc.Profile(r.Context(), tokenString)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, "Profile retrieved")
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
