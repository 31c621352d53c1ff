// ABOUTME: Authenticated encryption for agent credentials at rest
// ABOUTME: AES-256-GCM with a SHA-256 derived key and per-call random nonce

package agent

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	nonceSize = 12
	tagSize   = 16
)

// Cipher encrypts and decrypts opaque credential strings with a single
// long-lived symmetric key derived from a configured secret.
type Cipher struct {
	key []byte
}

// NewCipher derives a 256-bit key from the secret via SHA-256.
func NewCipher(secret string) *Cipher {
	key := sha256.Sum256([]byte(secret))
	return &Cipher{key: key[:]}
}

// Encrypt seals the plaintext and returns base64(nonce || tag || ciphertext).
// Empty plaintext is returned unchanged: there is nothing worth encrypting
// and round-trips stay trivially symmetric.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	// Seal produces ciphertext || tag; reorder to nonce || tag || ciphertext
	// so the stored layout matches the one the decrypt side splits.
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	out := make([]byte, 0, nonceSize+tagSize+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, ciphertext...)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Empty input is returned unchanged. Any malformed
// or tampered input fails closed with ErrDecryptFailed.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return encoded, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64", ErrDecryptFailed)
	}
	if len(raw) < nonceSize+tagSize {
		return "", fmt.Errorf("%w: input too short", ErrDecryptFailed)
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ciphertext := raw[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrDecryptFailed)
	}

	return string(plaintext), nil
}

func (c *Cipher) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}
