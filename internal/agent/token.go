// ABOUTME: Agent bearer token lifecycle: lazy load, encrypted persistence, refresh
// ABOUTME: Single-flight refresh so concurrent 401s share one provider round-trip

package agent

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CredentialStore persists the single encrypted credential record.
// GetCurrentSession returns an empty string when no record exists.
type CredentialStore interface {
	GetCurrentSession(ctx context.Context) (string, error)
	SaveEncryptedSession(ctx context.Context, ciphertext string) error
}

// TokenSource mints fresh bearer tokens from the external identity provider.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenManager owns the in-memory agent credential. It is the only component
// allowed to read or write token state; the gateway client goes through
// EnsureToken and Refresh.
type TokenManager struct {
	cipher    *Cipher
	store     CredentialStore
	source    TokenSource
	bootstrap string
	logger    *slog.Logger

	mu     sync.Mutex
	token  string
	loaded bool // load attempted, even if it yielded no token

	group singleflight.Group
}

// NewTokenManager creates a token manager. bootstrap may be empty; it seeds
// the credential when nothing usable is stored.
func NewTokenManager(cipher *Cipher, store CredentialStore, source TokenSource, bootstrap string, logger *slog.Logger) *TokenManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		cipher:    cipher,
		store:     store,
		source:    source,
		bootstrap: bootstrap,
		logger:    logger.With("component", "agent-token"),
	}
}

// EnsureToken returns the current token, loading it on first call.
// Load order: stored encrypted record, then the configured bootstrap token.
// An empty return means no credential is available; the load is not
// reattempted once it has run, whatever the outcome.
func (m *TokenManager) EnsureToken(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return m.token
	}
	m.loaded = true

	stored, err := m.store.GetCurrentSession(ctx)
	if err != nil {
		m.logger.Error("failed to load stored agent token", "error", err)
	} else if stored != "" {
		token, err := m.cipher.Decrypt(stored)
		if err != nil {
			// Soft failure: fall through to the bootstrap token.
			if errors.Is(err, ErrDecryptFailed) {
				m.logger.Warn("stored agent token undecryptable, discarding", "error", err)
			} else {
				m.logger.Error("failed to decrypt stored agent token", "error", err)
			}
		} else {
			m.token = token
		}
	}

	if m.token == "" && m.bootstrap != "" {
		m.token = m.bootstrap
		m.persist(ctx, m.token)
	}

	return m.token
}

// Refresh mints a new token from the identity provider, replaces the cached
// value, and persists it encrypted best-effort. Concurrent callers share a
// single provider round-trip and receive the same outcome.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		// The flight is shared: the triggering caller abandoning its request
		// must not cancel the refresh out from under the other waiters, and
		// the minted token is cached for future requests either way.
		refreshCtx := context.WithoutCancel(ctx)

		token, err := m.source.Token(refreshCtx)
		if err != nil {
			return nil, &TokenRefreshError{Err: err}
		}
		if token == "" {
			return nil, &TokenRefreshError{Err: errors.New("identity provider returned empty token")}
		}

		m.mu.Lock()
		m.token = token
		m.loaded = true
		m.persist(refreshCtx, token)
		m.mu.Unlock()

		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// persist writes the encrypted token to the store. Failures are logged, not
// propagated: the in-memory value is still usable for this process.
// Callers must hold m.mu.
func (m *TokenManager) persist(ctx context.Context, token string) {
	if token == "" {
		return
	}
	encrypted, err := m.cipher.Encrypt(token)
	if err != nil {
		m.logger.Error("failed to encrypt agent token", "error", err)
		return
	}
	if err := m.store.SaveEncryptedSession(ctx, encrypted); err != nil {
		m.logger.Error("failed to persist encrypted agent token", "error", err)
	}
}
