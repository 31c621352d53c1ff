// ABOUTME: Tests for the credential cipher
// ABOUTME: Covers round-trips, empty passthrough, and tamper detection

package agent

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipher_RoundTrip(t *testing.T) {
	c := NewCipher("test-secret")

	plaintexts := []string{
		"a",
		"ya29.c.b0AXv7short-token",
		"a much longer bearer token value with spaces and unicode: héllo wörld",
	}

	for _, pt := range plaintexts {
		encrypted, err := c.Encrypt(pt)
		require.NoError(t, err)
		require.NotEqual(t, pt, encrypted)

		decrypted, err := c.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, pt, decrypted)
	}
}

func TestCipher_EmptyPassthrough(t *testing.T) {
	c := NewCipher("test-secret")

	encrypted, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", encrypted)

	decrypted, err := c.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", decrypted)
}

func TestCipher_FreshNoncePerCall(t *testing.T) {
	c := NewCipher("test-secret")

	first, err := c.Encrypt("same input")
	require.NoError(t, err)
	second, err := c.Encrypt("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each encryption must draw a fresh nonce")
}

func TestCipher_TamperDetection(t *testing.T) {
	c := NewCipher("test-secret")

	encrypted, err := c.Encrypt("sensitive-token")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)

	// Flipping any byte must fail closed, never return corrupted plaintext.
	for i := range raw {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		_, err := c.Decrypt(base64.StdEncoding.EncodeToString(tampered))
		assert.ErrorIs(t, err, ErrDecryptFailed, "byte %d", i)
	}
}

func TestCipher_MalformedInput(t *testing.T) {
	c := NewCipher("test-secret")

	for _, input := range []string{
		"not base64 at all!!!",
		base64.StdEncoding.EncodeToString([]byte("short")),
	} {
		_, err := c.Decrypt(input)
		assert.True(t, errors.Is(err, ErrDecryptFailed), "input %q: got %v", input, err)
	}
}

func TestCipher_WrongKey(t *testing.T) {
	encrypted, err := NewCipher("secret-one").Encrypt("token")
	require.NoError(t, err)

	_, err = NewCipher("secret-two").Decrypt(encrypted)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}
