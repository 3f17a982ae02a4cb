package database

import (
	"path/filepath"
	"testing"
)

// setupTestDB opens a migrated SQLite database in a per-test temp
// directory. Cleanup is handled by t.TempDir.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "postscore_test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
