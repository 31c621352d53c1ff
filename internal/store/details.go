// ABOUTME: Conversation detail persistence
// ABOUTME: Batch inserts plus user-scoped listing and conversation deletion

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateDetails inserts a batch of detail entries in one transaction.
// IDs and timestamps are populated when unset. An empty batch is a no-op.
func (s *SQLiteStore) CreateDetails(ctx context.Context, details []*ConversationDetail) error {
	if len(details) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO conversation_details (id, conversation_id, user_id, title, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	for _, d := range details {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, query,
			d.ID,
			d.ConversationID,
			d.UserID,
			d.Title,
			d.Detail,
			d.CreatedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("inserting detail %q: %w", d.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing details: %w", err)
	}

	s.logger.Debug("created conversation details", "count", len(details))
	return nil
}

// ListDetails returns all detail entries for a conversation owned by the
// given user, oldest first.
func (s *SQLiteStore) ListDetails(ctx context.Context, userID, conversationID string) ([]*ConversationDetail, error) {
	query := `
		SELECT id, conversation_id, user_id, title, detail, created_at
		FROM conversation_details
		WHERE user_id = ? AND conversation_id = ?
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, userID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying details: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var details []*ConversationDetail
	for rows.Next() {
		var d ConversationDetail
		var createdAt string

		if err := rows.Scan(&d.ID, &d.ConversationID, &d.UserID, &d.Title, &d.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning detail row: %w", err)
		}

		if parsed, err := time.Parse(time.RFC3339, createdAt); err != nil {
			s.logger.Warn("failed to parse detail created_at", "id", d.ID, "error", err)
		} else {
			d.CreatedAt = parsed
		}

		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating detail rows: %w", err)
	}

	return details, nil
}

// DeleteConversation removes every detail entry for a conversation owned by
// the given user. Deleting a conversation with no entries is not an error.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	query := `DELETE FROM conversation_details WHERE user_id = ? AND conversation_id = ?`

	result, err := s.db.ExecContext(ctx, query, userID, conversationID)
	if err != nil {
		return fmt.Errorf("deleting conversation details: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	s.logger.Debug("deleted conversation details", "conversation_id", conversationID, "count", rowsAffected)
	return nil
}
