// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the Go binary as a
// single file. No separate database server to install, configure, or
// manage. The print queue is a single-server app with modest write
// volume, which is exactly SQLite's sweet spot. Tests use ":memory:" for
// a throwaway in-memory database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed
// and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: the sqlite package's init() registers itself
	// with database/sql as a driver named "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
//
// A single *DB implements both repository.UserRepository and
// repository.JobRepository — the two tables live in the same file and
// share one pool. Callers that only need one of the interfaces receive
// it through the narrower interface type.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/printqueue.db" → file-based database (persistent)
//   - ":memory:"           → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping verifies the connection actually works. Without this, a bad
	// path or permissions issue would only surface on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening —
	// default SQLite locks the entire database during writes, which is
	// no good for a web server handling parallel requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compat).
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Wherever you call New(),
// immediately defer Close() — this flushes the WAL and releases the
// file lock even if a panic occurs.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates or updates the schema. CREATE TABLE IF NOT EXISTS is
// idempotent, so this is safe to run on every startup.
//
// NOTE ON jobs.owner_id:
// owner_id stores the identity provider's external ID, not users.id, and
// deliberately carries no foreign key. The job keeps working even if the
// user row is re-synced, and the shape matches the document model this
// schema was ported from.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			external_id  TEXT NOT NULL UNIQUE,
			email        TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			is_admin     INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// status has a CHECK constraint so a bad write can never smuggle a
	// value outside the six-state enum into the store.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id         TEXT PRIMARY KEY,
			owner_id   TEXT NOT NULL,
			owner_name TEXT NOT NULL DEFAULT '',
			file_ref   TEXT NOT NULL,
			file_name  TEXT NOT NULL,
			file_type  TEXT NOT NULL,
			file_size  INTEGER NOT NULL,
			status     TEXT NOT NULL DEFAULT 'pending'
			           CHECK (status IN ('pending','queued','printing','completed','failed','cancelled')),
			notes      TEXT NOT NULL DEFAULT '',
			admin_note TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_jobs_owner_id ON jobs(owner_id);
		CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
		CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating jobs table: %w", err)
	}

	return nil
}
