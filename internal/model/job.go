package model

import (
	"fmt"
	"time"
)

// JobStatus is the closed set of lifecycle states for a print job.
//
// The nominal flow is pending → queued → printing → completed, with
// failed and cancelled reachable from any non-terminal state. The store
// does not enforce a transition table — any status may be set from any
// other. That leniency is deliberate: it is the admin's override
// mechanism (e.g. re-queueing a failed print). Completed, failed and
// cancelled are terminal by convention only.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusQueued    JobStatus = "queued"
	StatusPrinting  JobStatus = "printing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// JobStatuses lists every valid status, in workflow order.
var JobStatuses = []JobStatus{
	StatusPending,
	StatusQueued,
	StatusPrinting,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

// Valid reports whether s is one of the six known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusQueued, StatusPrinting,
		StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ParseJobStatus converts a raw string into a JobStatus, rejecting
// anything outside the enum. Every operation that accepts a status from
// the outside world goes through this.
func ParseJobStatus(raw string) (JobStatus, error) {
	s := JobStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid job status %q", raw)
	}
	return s, nil
}

// Job represents one user's 3D-print request and its lifecycle status.
//
// OwnerID is the identity provider's external ID of the submitting user —
// a denormalized reference with no foreign-key cascade, matching the
// document-store shape this schema was designed around. OwnerName is a
// snapshot of the display name at submission time and is never re-synced.
//
// FileRef is an opaque handle into the file store (the S3 object key);
// it says nothing about the file's content. Jobs are never deleted —
// cancellation is a status value, not a deletion.
type Job struct {
	ID        string    `json:"id"        db:"id"`
	OwnerID   string    `json:"ownerId"   db:"owner_id"`   // External ID of the submitting user
	OwnerName string    `json:"ownerName" db:"owner_name"` // Display name snapshot for the admin view
	FileRef   string    `json:"fileRef"   db:"file_ref"`   // Opaque file store handle
	FileName  string    `json:"fileName"  db:"file_name"`
	FileType  string    `json:"fileType"  db:"file_type"` // stl, 3mf, obj, gcode
	FileSize  int64     `json:"fileSize"  db:"file_size"` // bytes
	Status    JobStatus `json:"status"    db:"status"`
	Notes     string    `json:"notes,omitempty"      db:"notes"`       // User notes, set once at submission
	AdminNote string    `json:"adminNote,omitempty"  db:"admin_note"`  // Admin-only annotation
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
