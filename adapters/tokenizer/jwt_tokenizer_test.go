package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/gnoparus/pbtodo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenizer(t *testing.T) *JWTTokenizer {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return &JWTTokenizer{signKey: key}
}

func testSession() *core.Session {
	now := time.Now().Truncate(time.Second)
	return &core.Session{
		ID:            "session-1",
		UserID:        "user-1",
		Email:         "alice@example.com",
		IssuedAt:      now,
		AccessExpiry:  now.Add(5 * time.Minute),
		RefreshExpiry: now.Add(120 * time.Hour),
		RefreshID:     "refresh-1",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tk := newTestTokenizer(t)
	session := testSession()

	token, err := tk.SessionToAccessToken(session)
	require.NoError(t, err)

	got, err := tk.AccessTokenToSession(token)
	require.NoError(t, err)

	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, session.Email, got.Email)
	assert.Equal(t, session.RefreshID, got.RefreshID)
	assert.WithinDuration(t, session.AccessExpiry, got.AccessExpiry, time.Second)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tk := newTestTokenizer(t)
	session := testSession()

	token, err := tk.SessionToRefreshToken(session)
	require.NoError(t, err)

	got, err := tk.RefreshTokenToSession(token)
	require.NoError(t, err)

	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, session.Email, got.Email)
	assert.Equal(t, session.RefreshID, got.RefreshID)
	assert.WithinDuration(t, session.RefreshExpiry, got.RefreshExpiry, time.Second)
}

func TestTokenAudiencesAreNotInterchangeable(t *testing.T) {
	tk := newTestTokenizer(t)
	session := testSession()

	access, err := tk.SessionToAccessToken(session)
	require.NoError(t, err)
	refresh, err := tk.SessionToRefreshToken(session)
	require.NoError(t, err)

	_, err = tk.AccessTokenToSession(refresh)
	assert.Error(t, err)

	_, err = tk.RefreshTokenToSession(access)
	assert.Error(t, err)
}

func TestRejectsTokenFromDifferentKey(t *testing.T) {
	tk := newTestTokenizer(t)
	other := newTestTokenizer(t)

	token, err := other.SessionToAccessToken(testSession())
	require.NoError(t, err)

	_, err = tk.AccessTokenToSession(token)
	assert.Error(t, err)
}

func TestRejectsGarbageToken(t *testing.T) {
	tk := newTestTokenizer(t)

	_, err := tk.AccessTokenToSession("not.a.jwt")
	assert.Error(t, err)

	_, err = tk.RefreshTokenToSession("")
	assert.Error(t, err)
}
