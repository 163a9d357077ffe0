package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens() *Tokens {
	return NewTokens(TokenConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "fernet-barato-api",
		Audience: "fernet-barato-web",
		TTL:      time.Hour,
	})
}

func TestIssueThenParse(t *testing.T) {
	tokens := newTestTokens()
	token, expires, err := tokens.Issue("session-1", sampleUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.Subject)
	assert.Equal(t, "0x0456", claims.Wallet)
	assert.Equal(t, NetworkSepolia, claims.Network)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	tokens := newTestTokens()

	other := NewTokens(TokenConfig{Secret: []byte("other"), Issuer: "fernet-barato-api", Audience: "fernet-barato-web"})
	foreign, _, err := other.Issue("s", sampleUser())
	require.NoError(t, err)
	_, err = tokens.Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongAudience := NewTokens(TokenConfig{Secret: []byte("test-secret"), Issuer: "fernet-barato-api", Audience: "admin"})
	token, _, err := wrongAudience.Issue("s", sampleUser())
	require.NoError(t, err)
	_, err = tokens.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "s", Issuer: "fernet-barato-api"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tokens := newTestTokens()
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tokens.Issue("s", sampleUser())
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
