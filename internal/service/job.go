package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/print-queue/internal/apperror"
	"github.com/sakif/print-queue/internal/authz"
	"github.com/sakif/print-queue/internal/model"
	"github.com/sakif/print-queue/internal/repository"
	"github.com/sakif/print-queue/internal/validate"
)

// MaxNoteLength bounds user notes and admin notes.
const MaxNoteLength = 2000

// JobService handles the print job lifecycle and enforces the
// owner-or-admin access rules ahead of every store call.
//
// Every method takes an authz.Caller — the identity verified at the HTTP
// boundary. The service never looks identity up itself; it only decides
// what that identity may do.
type JobService struct {
	jobs   repository.JobRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewJobService creates a JobService. The user repository is needed to
// snapshot the submitter's display name onto the job record.
func NewJobService(jobs repository.JobRepository, users repository.UserRepository, logger *slog.Logger) *JobService {
	return &JobService{
		jobs:   jobs,
		users:  users,
		logger: logger,
	}
}

// SubmitParams carries the inputs for a job submission. FileRef must
// point at an object whose upload already completed — Submit is phase
// two of the upload contract.
type SubmitParams struct {
	FileRef  string
	FileName string
	FileSize int64
	Notes    string
}

// Submit creates a new print job owned by the caller.
//
// The job is always created under the caller's own external ID — there
// is no way to submit on someone else's behalf, admin or not. The file
// constraints are re-checked here even though the upload ticket already
// validated them: Submit trusts nothing the client round-tripped.
//
// The owner's display name is snapshotted from the user record at this
// moment and never re-synced afterwards.
func (s *JobService) Submit(ctx context.Context, caller authz.Caller, p SubmitParams) (*model.Job, error) {
	if !authz.CanSubmitJob(caller, caller.ExternalID) {
		return nil, apperror.Forbidden("authentication required to submit a job")
	}

	p.FileRef = strings.TrimSpace(p.FileRef)
	if p.FileRef == "" {
		return nil, apperror.ValidationFailed("fileRef", "file reference is required")
	}
	p.FileName = strings.TrimSpace(p.FileName)
	if p.FileName == "" {
		return nil, apperror.ValidationFailed("fileName", "file name is required")
	}
	if err := validate.CheckFile(p.FileName, p.FileSize); err != nil {
		return nil, err
	}
	if len(p.Notes) > MaxNoteLength {
		return nil, apperror.ValidationFailed("notes",
			fmt.Sprintf("notes must be %d characters or less", MaxNoteLength))
	}

	// Snapshot the display name for the admin view. A missing user record
	// means the sync step was skipped — fall back to the external ID
	// rather than failing the submission.
	ownerName := caller.ExternalID
	if user, err := s.users.GetByExternalID(ctx, caller.ExternalID); err == nil {
		ownerName = user.DisplayName
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/job: looking up submitter %s: %w", caller.ExternalID, err)
	}

	job := &model.Job{
		OwnerID:   caller.ExternalID,
		OwnerName: ownerName,
		FileRef:   p.FileRef,
		FileName:  p.FileName,
		FileType:  validate.Extension(p.FileName),
		FileSize:  p.FileSize,
		Notes:     strings.TrimSpace(p.Notes),
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		s.logger.Error("failed to create job",
			slog.String("owner", caller.ExternalID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating job: %w", err)
	}

	s.logger.Info("job submitted",
		slog.String("jobID", job.ID),
		slog.String("owner", job.OwnerID),
		slog.String("fileName", job.FileName),
		slog.Int64("fileSize", job.FileSize),
	)

	return job, nil
}

// GetByID returns a single job, enforcing owner-or-admin access.
//
// A caller who is neither owner nor admin gets ErrForbidden — uniformly,
// so the response doesn't reveal anything beyond "not yours".
func (s *JobService) GetByID(ctx context.Context, caller authz.Caller, id string) (*model.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "job ID is required")
	}

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanReadJob(caller, job.OwnerID) {
		return nil, apperror.Forbidden("you do not have access to this job")
	}

	return job, nil
}

// ListMine returns the caller's own jobs, newest first.
func (s *JobService) ListMine(ctx context.Context, caller authz.Caller) ([]model.Job, error) {
	jobs, err := s.jobs.ListByOwner(ctx, caller.ExternalID)
	if err != nil {
		s.logger.Error("failed to list jobs",
			slog.String("owner", caller.ExternalID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// ListAll returns every job in the store, newest first. Admin only.
//
// statusFilter narrows the list to one status when non-empty; an unknown
// status value is a validation error, not an empty result.
func (s *JobService) ListAll(ctx context.Context, caller authz.Caller, statusFilter string) ([]model.Job, error) {
	if !authz.CanManageJobs(caller) {
		return nil, apperror.Forbidden("admin access required")
	}

	if statusFilter != "" {
		status, err := model.ParseJobStatus(statusFilter)
		if err != nil {
			return nil, apperror.ValidationFailed("status", err.Error())
		}
		return s.jobs.ListByStatus(ctx, status)
	}

	return s.jobs.ListAll(ctx)
}

// SetStatus moves a job to the given status. Admin only.
//
// Any of the six statuses may be set from any current status — the
// workflow deliberately has no transition table so admins can always
// override (re-queue a failed print, un-cancel a job, ...). Concurrent
// updates are last-write-wins at the store.
func (s *JobService) SetStatus(ctx context.Context, caller authz.Caller, id, rawStatus string) (*model.Job, error) {
	if !authz.CanManageJobs(caller) {
		return nil, apperror.Forbidden("only admins may change job status")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "job ID is required")
	}

	status, err := model.ParseJobStatus(rawStatus)
	if err != nil {
		return nil, apperror.ValidationFailed("status", err.Error())
	}

	job, err := s.jobs.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("job status changed",
		slog.String("jobID", job.ID),
		slog.String("status", string(job.Status)),
		slog.String("by", caller.ExternalID),
	)

	return job, nil
}

// SetAdminNote replaces a job's admin note. Admin only.
func (s *JobService) SetAdminNote(ctx context.Context, caller authz.Caller, id, note string) (*model.Job, error) {
	if !authz.CanManageJobs(caller) {
		return nil, apperror.Forbidden("only admins may write admin notes")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "job ID is required")
	}
	if len(note) > MaxNoteLength {
		return nil, apperror.ValidationFailed("adminNote",
			fmt.Sprintf("admin note must be %d characters or less", MaxNoteLength))
	}

	job, err := s.jobs.SetAdminNote(ctx, id, note)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin note updated",
		slog.String("jobID", job.ID),
		slog.String("by", caller.ExternalID),
	)

	return job, nil
}
