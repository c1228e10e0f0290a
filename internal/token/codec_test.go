package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devnexus/devnexus/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 bytes

func testCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := New(Config{
		SecretKey: testSecret,
		Issuer:    "devnexus",
		Audience:  "devnexus-clients",
		TTL:       time.Hour,
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func testUser() *model.User {
	return &model.User{
		ID:          "user-001",
		Username:    "developer",
		Email:       "developer@company.com",
		DisplayName: "John Developer",
		Role:        model.RoleDeveloper,
		IsActive:    true,
	}
}

func TestNew_SecretTooShort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"31 bytes", "0123456789abcdef0123456789abcde"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Config{SecretKey: tc.secret}, nil)
			if !errors.Is(err, ErrSecretTooShort) {
				t.Errorf("expected ErrSecretTooShort, got %v", err)
			}
		})
	}
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	c := testCodec(t)
	user := testUser()

	signed, err := c.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims := c.Validate(signed)
	if claims == nil {
		t.Fatal("Validate returned nil for a freshly issued token")
	}

	if claims.Subject != user.ID {
		t.Errorf("subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Role != user.Role {
		t.Errorf("role = %q, want %q", claims.Role, user.Role)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserId = %q, want %q", claims.UserID, user.ID)
	}
	if claims.UserName != user.Username {
		t.Errorf("UserName = %q, want %q", claims.UserName, user.Username)
	}
	if claims.Name != user.DisplayName {
		t.Errorf("name = %q, want %q", claims.Name, user.DisplayName)
	}
	if claims.Email != user.Email {
		t.Errorf("email = %q, want %q", claims.Email, user.Email)
	}
}

func TestIssue_DefaultsRoleAndName(t *testing.T) {
	t.Parallel()

	c := testCodec(t)
	user := &model.User{ID: "user-002", Username: "plain"}

	signed, err := c.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims := c.Validate(signed)
	if claims == nil {
		t.Fatal("Validate returned nil")
	}
	if claims.Role != model.RoleUser {
		t.Errorf("role = %q, want default %q", claims.Role, model.RoleUser)
	}
	if claims.Name != "plain" {
		t.Errorf("name = %q, want fallback username", claims.Name)
	}
}

// signRaw builds a token outside the codec so failure paths can be forced.
func signRaw(t *testing.T, secret, issuer, audience string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      "user-001",
		"role":     model.RoleDeveloper,
		"UserId":   "user-001",
		"UserName": "developer",
		"iss":      issuer,
		"aud":      audience,
		"exp":      exp.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign raw token: %v", err)
	}
	return signed
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	c := testCodec(t)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not.a.token"},
		{"empty", ""},
		{"expired", signRaw(t, testSecret, "devnexus", "devnexus-clients", time.Now().Add(-time.Minute))},
		{"wrong secret", signRaw(t, "ffffffffffffffffffffffffffffffff", "devnexus", "devnexus-clients", future)},
		{"wrong issuer", signRaw(t, testSecret, "someone-else", "devnexus-clients", future)},
		{"wrong audience", signRaw(t, testSecret, "devnexus", "other-clients", future)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if claims := c.Validate(tc.token); claims != nil {
				t.Errorf("Validate accepted %s token", tc.name)
			}
		})
	}
}

func TestValidate_RejectsAlgNone(t *testing.T) {
	t.Parallel()

	c := testCodec(t)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-001",
		"iss": "devnexus",
		"aud": "devnexus-clients",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if claims := c.Validate(signed); claims != nil {
		t.Error("Validate accepted an unsigned token")
	}
}

func TestExtractUserID(t *testing.T) {
	t.Parallel()

	c := testCodec(t)

	signed, err := c.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if got := c.ExtractUserID(signed); got != "user-001" {
		t.Errorf("ExtractUserID = %q, want %q", got, "user-001")
	}
	if got := c.ExtractUserID("garbage"); got != "" {
		t.Errorf("ExtractUserID on invalid token = %q, want empty", got)
	}
}
