package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/model"
)

// RequireRole returns middleware that enforces role membership.
// Must be applied after Authenticate. With no roles listed, any
// authenticated caller passes. Role names are matched exactly, so
// Admin does not implicitly satisfy a Developer requirement.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if identity == nil {
				writeRoleError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if len(allowed) == 0 || slices.Contains(allowed, identity.Role) {
				next.ServeHTTP(w, r)
				return
			}

			writeRoleError(w, http.StatusForbidden,
				fmt.Sprintf("Insufficient permissions. Required role: %s", allowed[0]))
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only routes.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// writeRoleError writes a role-related error response.
func writeRoleError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"success":false,"message":"%s","data":null,"errors":null}`, message)
}
