// Package agent integrates with the external conversational agent service.
//
// # Overview
//
// The package covers the full credential-and-call path: encrypted credential
// persistence, lazy token loading with refresh, the HTTP gateway to the
// agent API, and extraction of structured payloads from agent replies.
//
// # TokenManager
//
// TokenManager owns the process-wide bearer credential:
//
//	tm := agent.NewTokenManager(cipher, store, source, bootstrapToken, logger)
//
// Key operations:
//
//   - EnsureToken(ctx): idempotent accessor; loads from the encrypted store
//     on first use, falls back to the bootstrap token, then caches
//   - Refresh(ctx): mints a new token from the identity provider; concurrent
//     calls collapse into one provider round-trip
//
// # Client
//
// Client wraps the two agent API operations:
//
//	client := agent.NewClient(baseURL, tm, timeout, logger)
//	sessionID, err := client.CreateSession(ctx, userID)
//	reply, err := client.SendMessage(ctx, userID, sessionID, message)
//
// Every call attaches the current bearer token. A 401 triggers one refresh
// and one retry; a second 401 is surfaced as an UpstreamError.
//
// # Extraction
//
// Agent replies mix free text with ^^^-fenced JSON blocks:
//
//	result := agent.ExtractStructuredPayload(reply)
//
// The first block that parses wins; all fenced spans are removed from the
// plain text. Parsing is best-effort and never returns an error.
//
// # Errors
//
//   - UpstreamError: agent API failure or contract violation, carries a status code
//   - TokenRefreshError: identity provider failure
//   - ErrDecryptFailed: stored credential unusable (soft, handled internally)
package agent
