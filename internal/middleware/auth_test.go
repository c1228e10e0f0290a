package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.New(token.Config{
		SecretKey: testSecret,
		Issuer:    "devnexus",
		Audience:  "devnexus-clients",
		TTL:       time.Hour,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	return codec
}

func authHandler(t *testing.T, codec *token.Codec, captured **model.Identity) http.Handler {
	t.Helper()
	mw := Authenticate(AuthConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Codec:  codec,
	})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = auth.IdentityFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthenticate_ValidToken(t *testing.T) {
	t.Parallel()

	codec := testCodec(t)
	signed, err := codec.Issue(&model.User{
		ID:       "user-001",
		Username: "developer",
		Email:    "dev@devnexus.local",
		Role:     model.RoleDeveloper,
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var identity *model.Identity
	handler := authHandler(t, codec, &identity)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if identity == nil {
		t.Fatal("identity not injected")
	}
	if identity.UserID != "user-001" || identity.UserName != "developer" || identity.Role != model.RoleDeveloper {
		t.Errorf("identity = %+v", identity)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()

	codec := testCodec(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"bearer without token", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := authHandler(t, codec, nil)
			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestAuthenticate_NilCodecRejects(t *testing.T) {
	t.Parallel()

	handler := authHandler(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
