// Package model defines domain entities for the application.
package model

import "time"

// Role constants for coarse authorization.
const (
	RoleAdmin     = "Admin"
	RoleDeveloper = "Developer"
	RoleUser      = "User"
)

// User represents an account that can sign in and appears in activity feeds.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	Role          string    `json:"role"`
	ExternalID    string    `json:"external_id,omitempty"`
	PasswordHash  string    `json:"-"` // Never serialize
	Permissions   []string  `json:"permissions,omitempty"`
	CreatedDate   time.Time `json:"created_date"`
	LastLoginDate time.Time `json:"last_login_date"`
	IsActive      bool      `json:"is_active"`
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// EffectiveRole returns the role tag, defaulting to RoleUser when unset.
func (u *User) EffectiveRole() string {
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}

// Identity holds the authenticated principal for a request.
// This is injected into the request context by the auth middleware.
type Identity struct {
	UserID   string
	UserName string
	Role     string
}
