package auth

import (
	"context"

	"github.com/devnexus/devnexus/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityKey contextKey = "identity"

// ContextWithIdentity adds the authenticated Identity to the context.
func ContextWithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the Identity from the context.
// Returns nil if not present.
func IdentityFromContext(ctx context.Context) *model.Identity {
	id, ok := ctx.Value(identityKey).(*model.Identity)
	if !ok {
		return nil
	}
	return id
}

// UserIDFromContext is a convenience function to get the user ID.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.UserID
}
