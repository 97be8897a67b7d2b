package repository

import (
	"context"

	"github.com/sakif/print-queue/internal/model"
)

// UserRepository is the persistence contract for user identity records
// mirrored from the external identity provider.
type UserRepository interface {
	// Upsert creates the user on first sync of an external ID, or
	// refreshes email and display name on subsequent syncs. It never
	// touches IsAdmin or CreatedAt on an existing record.
	Upsert(ctx context.Context, user *model.User) error

	// GetByExternalID looks up a user by the identity provider's ID.
	// Returns apperror.ErrNotFound when no such user exists.
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)

	// SetAdmin flips the admin flag for the given external ID.
	// Returns apperror.ErrNotFound when no such user exists.
	SetAdmin(ctx context.Context, externalID string, isAdmin bool) (*model.User, error)
}

// JobRepository is the persistence contract for print job records.
// All list operations return jobs ordered newest-created-first.
type JobRepository interface {
	// Create inserts a new job. Status is always set to pending and
	// CreatedAt == UpdatedAt, regardless of what the caller passed in.
	Create(ctx context.Context, job *model.Job) error

	GetByID(ctx context.Context, id string) (*model.Job, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Job, error)
	ListAll(ctx context.Context) ([]model.Job, error)
	ListByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error)

	// SetStatus updates a job's status and bumps UpdatedAt. Concurrent
	// writers race at the store's granularity — last write wins; there
	// is no optimistic-concurrency token.
	SetStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error)

	// SetAdminNote replaces the admin note and bumps UpdatedAt.
	SetAdminNote(ctx context.Context, id string, note string) (*model.Job, error)
}
