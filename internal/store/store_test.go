// ABOUTME: Shared test helpers for the store package
// ABOUTME: Creates throwaway SQLite stores backed by temp directories

package store

import (
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
