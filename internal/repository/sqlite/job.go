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

// compile-time check that *DB implements repository.JobRepository
var _ repository.JobRepository = (*DB)(nil)

const jobColumns = `id, owner_id, owner_name, file_ref, file_name, file_type,
	file_size, status, notes, admin_note, created_at, updated_at`

// Create inserts a new print job.
//
// The repository, not the caller, decides the initial lifecycle fields:
// status is forced to pending and created_at == updated_at == now. The
// caller is expected to have run upload validation already — file_type
// and file_size are stored as given.
func (db *DB) Create(ctx context.Context, job *model.Job) error {
	now := time.Now()
	job.ID = xid.New().String()
	job.Status = model.StatusPending
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO jobs (id, owner_id, owner_name, file_ref, file_name, file_type,
		                   file_size, status, notes, admin_note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
		job.ID,
		job.OwnerID,
		job.OwnerName,
		job.FileRef,
		job.FileName,
		job.FileType,
		job.FileSize,
		job.Status,
		job.Notes,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting job (owner=%s): %w", job.OwnerID, err)
	}

	return nil
}

// GetByID retrieves a job by its ID.
// Returns apperror.ErrNotFound if the job doesn't exist.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Job, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)

	job, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("job", id)
		}
		return nil, fmt.Errorf("sqlite: getting job %s: %w", id, err)
	}

	return job, nil
}

// ListByOwner returns all jobs submitted by the given external ID,
// newest-created-first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.Job, error) {
	return db.listJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE owner_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID)
}

// ListAll returns every job in the store, newest-created-first.
// Privileged: access control is the service layer's responsibility.
func (db *DB) ListAll(ctx context.Context) ([]model.Job, error) {
	return db.listJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC`)
}

// ListByStatus returns all jobs in the given status, newest-created-first.
func (db *DB) ListByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	return db.listJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at DESC, id DESC`,
		status)
}

// SetStatus updates a job's status and bumps updated_at.
//
// Two admins racing on the same job resolve at the store's granularity:
// last write wins. There is no version token — documented behavior, not
// a bug.
func (db *DB) SetStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error) {
	if !status.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("invalid job status %q", status))
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: setting status on job %s: %w", id, err)
	}

	if err := requireAffected(res, "job", id); err != nil {
		return nil, err
	}

	return db.GetByID(ctx, id)
}

// SetAdminNote replaces a job's admin note and bumps updated_at.
func (db *DB) SetAdminNote(ctx context.Context, id string, note string) (*model.Job, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE jobs SET admin_note = ?, updated_at = ? WHERE id = ?`,
		note, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: setting admin note on job %s: %w", id, err)
	}

	if err := requireAffected(res, "job", id); err != nil {
		return nil, err
	}

	return db.GetByID(ctx, id)
}

// listJobs runs a query returning job rows and scans them into a slice.
func (db *DB) listJobs(ctx context.Context, query string, args ...any) ([]model.Job, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning job row: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating job rows: %w", err)
	}

	return jobs, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows, so scanJob serves
// single-row and multi-row queries alike.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*model.Job, error) {
	var j model.Job
	var status string

	err := s.Scan(
		&j.ID,
		&j.OwnerID,
		&j.OwnerName,
		&j.FileRef,
		&j.FileName,
		&j.FileType,
		&j.FileSize,
		&status,
		&j.Notes,
		&j.AdminNote,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	j.Status = model.JobStatus(status)
	return &j, nil
}

// requireAffected converts a zero-row UPDATE into a NotFound error.
func requireAffected(res sql.Result, resource, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
