package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/print-queue/internal/apperror"
	"github.com/sakif/print-queue/internal/model"
	"github.com/sakif/print-queue/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or updates a user based on their external ID.
//
// The sync contract: first call for an external ID inserts a fresh record
// with is_admin=0; every later call only refreshes email and display name
// (the profile fields the identity provider owns). The internal ID, the
// admin flag and created_at survive re-syncs untouched, so calling this
// on every authenticated page load is safe.
//
// WHY LOOKUP-THEN-WRITE INSTEAD OF INSERT OR REPLACE?
// REPLACE INTO would delete and re-insert the row, losing is_admin and
// created_at. We need a partial update on conflict, so we check for the
// existing row first and branch. The UNIQUE constraint on external_id
// still backstops a race between two first-time syncs: the loser's
// INSERT fails and that request surfaces the error (the next sync
// succeeds as an update).
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	var existing model.User
	var isAdmin int
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, is_admin, created_at FROM users WHERE external_id = ?`,
		user.ExternalID,
	).Scan(&existing.ID, &isAdmin, &existing.CreatedAt)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by external_id %s: %w", user.ExternalID, err)
	}

	if existing.ID != "" {
		// Known user — refresh the provider-owned profile fields only.
		user.ID = existing.ID
		user.IsAdmin = isAdmin != 0
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET email = ?, display_name = ?, updated_at = ?
			 WHERE id = ?`,
			user.Email,
			user.DisplayName,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	// First sync for this external ID — insert with is_admin=0.
	now := time.Now()
	user.ID = xid.New().String()
	user.IsAdmin = false
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, external_id, email, display_name, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		user.ID,
		user.ExternalID,
		user.Email,
		user.DisplayName,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (externalID=%s): %w", user.ExternalID, err)
	}

	return nil
}

// GetByExternalID retrieves a user by the identity provider's ID.
// Returns apperror.ErrNotFound if no user exists with that external ID.
func (db *DB) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var u model.User
	var isAdmin int

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, external_id, email, display_name, is_admin, created_at, updated_at
		 FROM users WHERE external_id = ?`,
		externalID,
	).Scan(
		&u.ID,
		&u.ExternalID,
		&u.Email,
		&u.DisplayName,
		&isAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", externalID)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", externalID, err)
	}

	u.IsAdmin = isAdmin != 0
	return &u, nil
}

// SetAdmin flips the admin flag for the user with the given external ID.
// Returns apperror.ErrNotFound if no such user exists — the flag cannot
// be granted ahead of the user's first sync.
func (db *DB) SetAdmin(ctx context.Context, externalID string, isAdmin bool) (*model.User, error) {
	flag := 0
	if isAdmin {
		flag = 1
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET is_admin = ?, updated_at = ? WHERE external_id = ?`,
		flag, time.Now(), externalID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: setting admin flag for %s: %w", externalID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("user", externalID)
	}

	return db.GetByExternalID(ctx, externalID)
}
