// ABOUTME: Tests for the single-row agent credential store
// ABOUTME: Covers absent reads and upsert semantics

package store

import (
	"context"
	"testing"
)

func TestGetCurrentSession_Empty(t *testing.T) {
	store := setupTestStore(t)

	ciphertext, err := store.GetCurrentSession(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentSession failed: %v", err)
	}
	if ciphertext != "" {
		t.Errorf("expected empty ciphertext, got %q", ciphertext)
	}
}

func TestSaveEncryptedSession_Upsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.SaveEncryptedSession(ctx, "first-ciphertext"); err != nil {
		t.Fatalf("SaveEncryptedSession failed: %v", err)
	}

	ciphertext, err := store.GetCurrentSession(ctx)
	if err != nil {
		t.Fatalf("GetCurrentSession failed: %v", err)
	}
	if ciphertext != "first-ciphertext" {
		t.Errorf("expected first-ciphertext, got %q", ciphertext)
	}

	// Second write replaces, never appends
	if err := store.SaveEncryptedSession(ctx, "second-ciphertext"); err != nil {
		t.Fatalf("SaveEncryptedSession (update) failed: %v", err)
	}

	ciphertext, err = store.GetCurrentSession(ctx)
	if err != nil {
		t.Fatalf("GetCurrentSession failed: %v", err)
	}
	if ciphertext != "second-ciphertext" {
		t.Errorf("expected second-ciphertext, got %q", ciphertext)
	}

	var count int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM agent_session").Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one credential row, got %d", count)
	}
}
