// Package dto defines request and response shapes for the HTTP API.
package dto

import (
	"time"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/model"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate returns field-level problems with the request.
func (r LoginRequest) Validate() []string {
	var errs []string
	if r.Username == "" {
		errs = append(errs, "username is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// RefreshRequest carries the still-valid access token to reissue from.
type RefreshRequest struct {
	Token string `json:"token"`
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         *model.User `json:"user"`
}

// ToLoginResponse converts a login result into its response shape.
func ToLoginResponse(result *auth.LoginResult) LoginResponse {
	return LoginResponse{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt,
		User:         result.User,
	}
}
