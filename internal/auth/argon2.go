// Package auth provides credential verification and login handling.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP 2024 recommended minimum).
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

var (
	// ErrInvalidHash indicates the hash format is invalid.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates the hash version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// CredentialVerifier checks a presented secret against stored credential
// material. The production implementation is Argon2idVerifier; tests may
// substitute their own.
type CredentialVerifier interface {
	Verify(password, hash string) (bool, error)
}

// Argon2idVerifier verifies PHC-format argon2id hashes.
type Argon2idVerifier struct{}

// Verify implements CredentialVerifier.
func (Argon2idVerifier) Verify(password, hash string) (bool, error) {
	return VerifyPassword(password, hash)
}

// HashPassword creates an Argon2id hash of the given password.
// Returns the hash in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Key := base64.RawStdEncoding.EncodeToString(key)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads, b64Salt, b64Key), nil
}

// VerifyPassword checks a password against a PHC-format argon2id hash.
// Returns false with no error for a mismatch; errors indicate a hash that
// could not be parsed.
func VerifyPassword(password, hash string) (bool, error) {
	salt, key, memory, timeCost, threads, err := decodeHash(hash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// decodeHash parses a PHC argon2id string into its parameters.
func decodeHash(hash string) (salt, key []byte, memory, timeCost uint32, threads uint8, err error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, nil, 0, 0, 0, ErrIncompatibleVersion
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}

	return salt, key, memory, timeCost, threads, nil
}
