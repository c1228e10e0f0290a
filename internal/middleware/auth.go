package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/metrics"
	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/token"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Codec   *token.Codec
	Metrics metrics.Recorder
}

// Authenticate returns middleware that validates the bearer token on
// every request. A valid token injects the caller's identity into the
// request context; anything else gets the same 401 regardless of the
// failure mode. A nil codec rejects everything, which is what happens
// when no signing secret is configured.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				rec.IncTokenRejected()
				writeAuthError(w)
				return
			}

			if cfg.Codec == nil {
				logAuthFailure(cfg.Logger, r, "auth_disabled")
				rec.IncTokenRejected()
				writeAuthError(w)
				return
			}

			claims := cfg.Codec.Validate(tokenString)
			if claims == nil {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				rec.IncTokenRejected()
				writeAuthError(w)
				return
			}

			identity := &model.Identity{
				UserID:   claims.UserID,
				UserName: claims.UserName,
				Role:     claims.Role,
			}
			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header.
// Only the exact "Bearer " prefix is accepted.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"message":"Invalid or missing token","data":null,"errors":null}`))
}
