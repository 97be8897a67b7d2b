// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// We use GitHub OAuth as the identity provider, so the primary external
// identifier is the GitHub user ID. We still generate our own internal
// string ID (xid) for consistency with Job and to avoid tying our primary
// keys to a third-party's numbering scheme.
//
// WHY ExternalID string (not int64)?
// The sync contract treats the provider ID as an opaque string — the store
// never parses or interprets it, it is only a lookup key. Keeping it a
// string means nothing downstream breaks if the identity provider changes
// its ID scheme. The UNIQUE constraint on external_id in the DB ensures
// one provider account maps to exactly one app account.
//
// IsAdmin is false at creation and is mutable only through the explicit
// SetAdmin operation — a profile sync never touches it.
type User struct {
	ID          string    `json:"id"          db:"id"`
	ExternalID  string    `json:"externalId"  db:"external_id"` // Identity provider's user ID
	Email       string    `json:"email"       db:"email"`       // Primary email (may be empty if hidden)
	DisplayName string    `json:"displayName" db:"display_name"`
	IsAdmin     bool      `json:"isAdmin"     db:"is_admin"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
