package sqlite

import "testing"

// newTestDB returns a *DB backed by an in-memory SQLite database.
// Migrations run in New, so the schema is ready to use. The database
// disappears when the connection closes — no cleanup files.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	// Running migrations again on an already-migrated database must be
	// a no-op, not an error — New runs on every startup.
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}
