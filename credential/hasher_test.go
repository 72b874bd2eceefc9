package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 3)
	assert.Equal(t, "100000", parts[0])

	salt, err := hex.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Len(t, salt, SaltLength)

	key, err := hex.DecodeString(parts[2])
	require.NoError(t, err)
	assert.Len(t, key, KeyLength)
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	first, err := HashPassword("same password")
	require.NoError(t, err)
	second, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	passwords := []string{"Sup3rSecret", "", "päss wörd", strings.Repeat("x", 72)}

	for _, p := range passwords {
		hash, err := HashPassword(p)
		require.NoError(t, err)

		assert.True(t, VerifyPassword(p, hash), "password %q should verify against its own hash", p)
		assert.False(t, VerifyPassword(p+"!", hash))
	}
}

func TestVerifyPassword_FailsClosedOnMalformedHash(t *testing.T) {
	malformed := []string{
		"",
		"100000$deadbeef",                     // two fields
		"100000$deadbeef$cafe$extra",          // four fields
		"notanumber$deadbeef$cafebabe",        // non-integer iterations
		"-1$deadbeef$cafebabe",                // non-positive iterations
		"100000$nothexatall$cafebabe",         // non-hex salt
		"100000$deadbeef$nothexatall",         // non-hex key
		"100000$$cafebabe",                    // empty salt
		"100000$deadbeef$",                    // empty key
		"plain bcrypt-looking $2a$10$ string", // foreign format
	}

	for _, stored := range malformed {
		assert.False(t, VerifyPassword("whatever", stored), "stored %q", stored)
	}
}

func TestVerifyPassword_RejectsTruncatedStoredKey(t *testing.T) {
	// A stored key honestly derived at a shorter length must not verify;
	// the comparison always runs against a full-length derivation.
	const password = "Sup3rSecret"

	hash, err := HashPassword(password)
	require.NoError(t, err)
	parts := strings.Split(hash, "$")
	require.Len(t, parts, 3)

	salt, err := hex.DecodeString(parts[1])
	require.NoError(t, err)

	short := pbkdf2.Key([]byte(password), salt, Iterations, KeyLength/2, sha256.New)
	truncated := strings.Join([]string{parts[0], parts[1], hex.EncodeToString(short)}, "$")

	assert.False(t, VerifyPassword(password, truncated))
}

func TestVerifyPassword_UsesEmbeddedIterationCount(t *testing.T) {
	// A hash recorded under an older, lower iteration default must keep
	// verifying after the package default changes.
	const password = "legacy password 1"

	legacy := rehash(t, password, 1000)
	assert.True(t, VerifyPassword(password, legacy))
	assert.False(t, VerifyPassword("legacy password 2", legacy))
}

// rehash builds a hash with an explicit iteration count by patching the
// iterations field of a real hash, re-deriving with the parsed values.
func rehash(t *testing.T, password string, iterations int) string {
	t.Helper()

	hash, err := HashPassword(password)
	require.NoError(t, err)
	parts := strings.Split(hash, "$")
	require.Len(t, parts, 3)

	salt, err := hex.DecodeString(parts[1])
	require.NoError(t, err)

	key := pbkdf2.Key([]byte(password), salt, iterations, KeyLength, sha256.New)
	return strings.Join([]string{strconv.Itoa(iterations), parts[1], hex.EncodeToString(key)}, "$")
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("abc123", "abc123"))
	assert.True(t, ConstantTimeEqual("", ""))

	assert.False(t, ConstantTimeEqual("abc123", "abc124"))
	assert.False(t, ConstantTimeEqual("short", "longer value"))

	// symmetric
	assert.Equal(t, ConstantTimeEqual("a", "b"), ConstantTimeEqual("b", "a"))
	assert.Equal(t, ConstantTimeEqual("ab", "a"), ConstantTimeEqual("a", "ab"))
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64) // hex doubles the byte length

	_, err = hex.DecodeString(token)
	assert.NoError(t, err)

	other, err := GenerateToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	_, err = GenerateToken(0)
	assert.Error(t, err)
}

func TestGenerateUUID(t *testing.T) {
	id := GenerateUUID()
	assert.Len(t, id, 36)
	assert.Equal(t, byte('4'), id[14], "version nibble must be 4")
	assert.NotEqual(t, id, GenerateUUID())
}

func TestSHA256Hex(t *testing.T) {
	// well-known digest of the empty input
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		SHA256Hex(nil))

	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		SHA256Hex([]byte("hello")))
}
