package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/devnexus/devnexus/internal/cache"
)

// RateLimitConfig holds configuration for login rate limiting.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Cache   *cache.Cache
	Enabled bool
	// LoginRPM is the sustained allowance of login attempts per minute
	// per client IP; LoginBurst is the bucket capacity.
	LoginRPM   int
	LoginBurst int
}

// RateLimitLogin returns middleware that limits login attempts per
// client IP. A disabled limiter or missing cache passes everything
// through; Redis failures fail open inside the cache layer.
func RateLimitLogin(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Cache == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)

			result, err := cfg.Cache.CheckLoginRateLimit(r.Context(), ip, cfg.LoginRPM, cfg.LoginBurst)
			if err != nil {
				cfg.Logger.Error("login rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("ip", ip),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("type", "login"),
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				writeRateLimitError(w, int(result.RetryAfter.Seconds()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfterSec int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = fmt.Fprintf(w,
		`{"success":false,"message":"Too many login attempts. Retry after %d seconds.","data":null,"errors":null}`,
		retryAfterSec)
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers for proxied requests.
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		for i := range xff {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
