// ABOUTME: Single-row storage for the encrypted agent credential
// ABOUTME: Reads return empty when absent; writes upsert the one row

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetCurrentSession returns the stored encrypted credential, or an empty
// string when no record exists.
func (s *SQLiteStore) GetCurrentSession(ctx context.Context) (string, error) {
	var ciphertext string
	err := s.db.QueryRowContext(ctx,
		`SELECT current_session FROM agent_session WHERE id = 1`,
	).Scan(&ciphertext)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying agent session: %w", err)
	}
	return ciphertext, nil
}

// SaveEncryptedSession stores the encrypted credential, replacing any
// existing record. At most one row ever exists.
func (s *SQLiteStore) SaveEncryptedSession(ctx context.Context, ciphertext string) error {
	query := `
		INSERT INTO agent_session (id, current_session, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_session = excluded.current_session,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, ciphertext, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving agent session: %w", err)
	}

	s.logger.Debug("saved encrypted agent session")
	return nil
}
