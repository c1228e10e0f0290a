package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/devnexus/devnexus/internal/metrics"
	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/store"
	"github.com/devnexus/devnexus/internal/token"
)

// Service errors.
var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords; callers must not be able to tell them apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken indicates a missing, malformed or expired token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUnavailable indicates token issuance is disabled because no
	// usable signing secret was configured.
	ErrUnavailable = errors.New("authentication is not configured")
)

// LoginResult is returned on successful authentication.
// RefreshToken is an opaque random value generated for wire compatibility;
// it is not stored and not consumed anywhere. Refresh reissues from a
// still-valid access token instead.
type LoginResult struct {
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
	User         *model.User
}

// Service authenticates credentials and manages token issuance.
type Service struct {
	store    store.Store
	codec    *token.Codec // nil when token issuance is disabled
	verifier CredentialVerifier
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewService creates an auth Service. A nil codec disables Authenticate
// and Refresh (they return ErrUnavailable) without failing the rest of
// the process.
func NewService(st store.Store, codec *token.Codec, verifier CredentialVerifier, logger *slog.Logger, recorder metrics.Recorder) *Service {
	if verifier == nil {
		verifier = Argon2idVerifier{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Service{
		store:    st,
		codec:    codec,
		verifier: verifier,
		logger:   logger.With("component", "auth"),
		metrics:  recorder,
	}
}

// Authenticate verifies the username/password pair and issues a token.
// Returns ErrInvalidCredentials for unknown users and wrong passwords alike.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	if s.codec == nil {
		return nil, ErrUnavailable
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.ValidateCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	signed, err := s.codec.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	// Best effort; a failed timestamp update must not fail the login.
	if err := s.store.UpdateUserLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	s.metrics.IncLoginSuccess()

	return &LoginResult{
		Token:        signed,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().UTC().Add(s.codec.TTL()),
		User:         user,
	}, nil
}

// ValidateCredentials reports whether the presented secret matches the
// stored credential for that identity.
func (s *Service) ValidateCredentials(ctx context.Context, username, password string) (bool, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}

	match, err := s.verifier.Verify(password, user.PasswordHash)
	if err != nil {
		// Unparseable credential material is a mismatch from the
		// caller's point of view; log the detail for operators.
		s.logger.Warn("credential verification error", "user_id", user.ID, "error", err)
		return false, nil
	}
	return match, nil
}

// Refresh reissues a token while the presented access token is still
// valid. There is no refresh-token rotation.
func (s *Service) Refresh(ctx context.Context, accessToken string) (*LoginResult, error) {
	if s.codec == nil {
		return nil, ErrUnavailable
	}

	userID := s.codec.ExtractUserID(accessToken)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	signed, err := s.codec.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Token:        signed,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().UTC().Add(s.codec.TTL()),
		User:         user,
	}, nil
}

// Profile resolves the user record for a presented access token.
func (s *Service) Profile(ctx context.Context, accessToken string) (*model.User, error) {
	if s.codec == nil {
		return nil, ErrUnavailable
	}

	userID := s.codec.ExtractUserID(accessToken)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
