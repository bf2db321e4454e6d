package testutil

import (
	"testing"

	"casesync/internal/store"
)

// NewTestStore creates a new in-memory SQLite suggestion store with the
// schema applied. The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	db, err := store.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := db.Exec(store.Schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	s := store.NewSQLiteStoreFromDB(db)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}
