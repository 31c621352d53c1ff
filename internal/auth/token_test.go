// ABOUTME: Tests for JWT generation and verification
// ABOUTME: Covers round-trips, expiry, tampering, and wrong-secret rejection

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))

	token, err := verifier.Generate("user-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWT_Expired(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))

	token, err := verifier.Generate("user-123", -time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := NewJWTVerifier([]byte("secret-one")).Generate("user-123", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTVerifier([]byte("secret-two")).Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWT_Garbage(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))

	_, err := verifier.Verify("not.a.jwt")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
