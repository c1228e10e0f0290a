package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/memstore"
	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/store"
	"github.com/devnexus/devnexus/internal/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var hashOnce struct {
	sync.Once
	hash string
}

// testHash hashes the dev password once per test binary; argon2 is
// deliberately slow.
func testHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := auth.HashPassword("password123")
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		hashOnce.hash = h
	})
	return hashOnce.hash
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.New(token.Config{
		SecretKey: testSecret,
		Issuer:    "devnexus-test",
		Audience:  "devnexus-test-clients",
		TTL:       time.Hour,
	}, discardLogger())
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	return codec
}

func newService(t *testing.T, codec *token.Codec) (*auth.Service, *memstore.Store) {
	t.Helper()
	st := memstore.NewSeeded(testHash(t))
	return auth.NewService(st, codec, auth.Argon2idVerifier{}, discardLogger(), nil), st
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	svc, st := newService(t, testCodec(t))
	ctx := context.Background()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		res, err := svc.Authenticate(ctx, memstore.DevUsername, "password123")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if res.Token == "" {
			t.Error("expected a signed token")
		}
		if res.RefreshToken == "" {
			t.Error("expected a refresh token")
		}
		if res.User == nil || res.User.Username != memstore.DevUsername {
			t.Errorf("unexpected user: %+v", res.User)
		}
		if !res.ExpiresAt.After(time.Now()) {
			t.Errorf("expiry not in the future: %v", res.ExpiresAt)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, memstore.DevUsername, "wrong")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody", "password123")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unparseable stored hash is a mismatch", func(t *testing.T) {
		st.AddUser(&model.User{
			ID:           "user-bad",
			Username:     "badhash",
			PasswordHash: "not-a-phc-string",
			IsActive:     true,
		})
		_, err := svc.Authenticate(ctx, "badhash", "password123")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestAuthenticateDisabled(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, nil)
	ctx := context.Background()

	if _, err := svc.Authenticate(ctx, memstore.DevUsername, "password123"); !errors.Is(err, auth.ErrUnavailable) {
		t.Errorf("Authenticate err = %v, want ErrUnavailable", err)
	}
	if _, err := svc.Refresh(ctx, "whatever"); !errors.Is(err, auth.ErrUnavailable) {
		t.Errorf("Refresh err = %v, want ErrUnavailable", err)
	}
	if _, err := svc.Profile(ctx, "whatever"); !errors.Is(err, auth.ErrUnavailable) {
		t.Errorf("Profile err = %v, want ErrUnavailable", err)
	}
}

func TestValidateCredentials(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, testCodec(t))
	ctx := context.Background()

	ok, err := svc.ValidateCredentials(ctx, memstore.DevUsername, "password123")
	if err != nil || !ok {
		t.Errorf("ValidateCredentials = %v, %v, want true, nil", ok, err)
	}

	ok, err = svc.ValidateCredentials(ctx, memstore.DevUsername, "wrong")
	if err != nil || ok {
		t.Errorf("ValidateCredentials wrong password = %v, %v, want false, nil", ok, err)
	}

	// Unknown user is reported as a mismatch, not an error.
	ok, err = svc.ValidateCredentials(ctx, "nobody", "password123")
	if err != nil || ok {
		t.Errorf("ValidateCredentials unknown user = %v, %v, want false, nil", ok, err)
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	svc, st := newService(t, testCodec(t))
	ctx := context.Background()

	login, err := svc.Authenticate(ctx, memstore.DevUsername, "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	t.Run("valid token reissues", func(t *testing.T) {
		res, err := svc.Refresh(ctx, login.Token)
		if err != nil {
			t.Fatalf("Refresh: %v", err)
		}
		if res.Token == "" {
			t.Error("expected a new token")
		}
		if res.User.ID != login.User.ID {
			t.Errorf("user id = %q, want %q", res.User.ID, login.User.ID)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "garbage")
		if !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		ghost := &model.User{
			ID:           "user-ghost",
			Username:     "ghost",
			PasswordHash: testHash(t),
			IsActive:     true,
		}
		st.AddUser(ghost)
		res, err := svc.Authenticate(ctx, "ghost", "password123")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}

		// A fresh store without the user stands in for deletion.
		orphan := auth.NewService(memstore.New(), testCodec(t), auth.Argon2idVerifier{}, discardLogger(), nil)
		if _, err := orphan.Refresh(ctx, res.Token); !errors.Is(err, store.ErrUserNotFound) {
			t.Fatalf("err = %v, want ErrUserNotFound", err)
		}
	})
}

func TestProfile(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, testCodec(t))
	ctx := context.Background()

	login, err := svc.Authenticate(ctx, memstore.DevUsername, "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	user, err := svc.Profile(ctx, login.Token)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if user.Username != memstore.DevUsername {
		t.Errorf("username = %q, want %q", user.Username, memstore.DevUsername)
	}

	if _, err := svc.Profile(ctx, "garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("garbage token err = %v, want ErrInvalidToken", err)
	}
}
