// Package credential provides password hashing and the small set of
// random-token helpers the auth service is built on. Hashes are
// self-describing: the PBKDF2 iteration count travels with the salt and
// derived key, so the default can be raised later without invalidating
// credentials that were stored under the old setting.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

// Tunable hashing parameters. Iterations only applies to newly created
// hashes; verification always uses the count parsed from the stored value.
const (
	SaltLength = 16
	KeyLength  = 32
	Iterations = 100000

	delimiter  = "$"
	fieldCount = 3
)

var (
	ErrMalformedHash = errors.New("malformed password hash")
)

// HashPassword derives a storage-safe hash from a plaintext password,
// encoded as "iterations$saltHex$hashHex".
func HashPassword(password string) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, Iterations, KeyLength, sha256.New)

	return strings.Join([]string{
		strconv.Itoa(Iterations),
		hex.EncodeToString(salt),
		hex.EncodeToString(key),
	}, delimiter), nil
}

// VerifyPassword checks a plaintext password against a stored hash.
// It fails closed: any parse problem yields false rather than an error,
// so callers cannot be turned into an oracle that distinguishes a
// malformed record from a wrong password.
func VerifyPassword(password, stored string) bool {
	iterations, salt, expected, err := parseHash(stored)
	if err != nil {
		return false
	}

	// A stored key of the wrong length can never match a full derivation
	if len(expected) != KeyLength {
		return false
	}

	derived := pbkdf2.Key([]byte(password), salt, iterations, KeyLength, sha256.New)

	return subtle.ConstantTimeCompare(derived, expected) == 1
}

func parseHash(stored string) (iterations int, salt, key []byte, err error) {
	parts := strings.Split(stored, delimiter)
	if len(parts) != fieldCount {
		return 0, nil, nil, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedHash, fieldCount, len(parts))
	}

	iterations, err = strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return 0, nil, nil, fmt.Errorf("%w: bad iteration count", ErrMalformedHash)
	}

	salt, err = hex.DecodeString(parts[1])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, fmt.Errorf("%w: bad salt", ErrMalformedHash)
	}

	key, err = hex.DecodeString(parts[2])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, fmt.Errorf("%w: bad derived key", ErrMalformedHash)
	}

	return iterations, salt, key, nil
}

// GenerateToken returns length cryptographically random bytes, hex-encoded.
// Used for session and opaque identifiers.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("token length must be positive")
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// GenerateUUID returns a random version-4 UUID
func GenerateUUID() string {
	return uuid.NewString()
}

// SHA256Hex returns the hex-encoded SHA-256 digest of data
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual compares two strings without leaking, through timing,
// where they first differ. Length mismatch returns false immediately;
// equal-length inputs are always compared in full.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
