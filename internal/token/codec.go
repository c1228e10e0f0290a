// Package token issues and validates signed bearer tokens.
package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devnexus/devnexus/internal/model"
)

// MinSecretLength is the minimum HMAC secret length in bytes.
const MinSecretLength = 32

// ErrSecretTooShort indicates the configured signing secret is absent or
// shorter than MinSecretLength. This is a startup-time condition.
var ErrSecretTooShort = errors.New("token signing secret must be at least 32 bytes")

// Custom claim names carried alongside the registered claims.
const (
	claimUserID   = "UserId"
	claimUserName = "UserName"
)

// Claims is the claim set carried by an issued token.
type Claims struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	UserID   string `json:"UserId"`
	UserName string `json:"UserName"`
	jwt.RegisteredClaims
}

// Config holds the codec settings.
type Config struct {
	SecretKey string
	Issuer    string
	Audience  string
	TTL       time.Duration
}

// Codec signs and verifies HMAC-SHA256 tokens with a shared secret.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Codec. Returns ErrSecretTooShort if the secret does not
// meet the minimum length; callers should treat that as fatal for the
// authentication path.
func New(cfg Config, logger *slog.Logger) (*Codec, error) {
	if len(cfg.SecretKey) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{
		secret:   []byte(cfg.SecretKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		logger:   logger.With("component", "token"),
		now:      time.Now,
	}, nil
}

// Issue builds and signs a token for the given user.
// The claim set reproduces the user record exactly at issuance time.
func (c *Codec) Issue(user *model.User) (string, error) {
	now := c.now().UTC()

	claims := Claims{
		Name:     user.Name(),
		Email:    user.Email,
		Role:     user.EffectiveRole(),
		UserID:   user.ID,
		UserName: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, issuer, audience and expiry with zero clock
// skew. Returns the claim set on success and nil on any verification
// failure; the failure reason is logged but not surfaced to the caller.
func (c *Codec) Validate(tokenString string) *Claims {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		c.logger.Debug("token rejected", "error", err)
		return nil
	}
	if !tok.Valid {
		return nil
	}
	return claims
}

// ExtractUserID validates the token and returns its UserId claim.
// Returns the empty string when the token is invalid.
func (c *Codec) ExtractUserID(tokenString string) string {
	claims := c.Validate(tokenString)
	if claims == nil {
		return ""
	}
	return claims.UserID
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
