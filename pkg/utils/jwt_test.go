package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "keeper@fleet.example", "operator")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "keeper@fleet.example", claims.Email)
	assert.Equal(t, "operator", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	parsed, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestTokenTypeIsolation(t *testing.T) {
	m := newTestManager()
	userID := uuid.New()

	access, err := m.GenerateAccessToken(userID, "keeper@fleet.example", "viewer")
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(userID, "keeper@fleet.example", "viewer")
	require.NoError(t, err)

	// A refresh token must never pass access validation, and vice versa.
	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewTokenManager("test-secret", -1*time.Minute, 24*time.Hour)

	token, err := m.GenerateAccessToken(uuid.New(), "keeper@fleet.example", "viewer")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	m := newTestManager()
	other := NewTokenManager("different-secret", 15*time.Minute, 24*time.Hour)

	token, err := m.GenerateAccessToken(uuid.New(), "keeper@fleet.example", "viewer")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken(uuid.New(), "keeper@fleet.example", "viewer")
	require.NoError(t, err)

	tampered := token[:len(token)-3] + "abc"
	_, err = m.ValidateAccessToken(tampered)
	assert.Error(t, err)
}
