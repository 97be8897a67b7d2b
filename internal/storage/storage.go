// Package storage defines the file transport contract.
//
// Binary transfer is a separate, independently-cancelable operation from
// job bookkeeping: the client asks for an upload ticket, PUTs the file
// straight to object storage using the ticket's URL, and only then
// submits the job carrying the ticket's FileRef. A failed upload leaves
// no job record behind; a job record never references a FileRef that
// failed to materialize.
package storage

import "context"

// UploadTicket is the result of the first phase of an upload: an opaque
// handle the job record will carry, and a short-lived URL the client
// PUTs the file bytes to.
type UploadTicket struct {
	FileRef string `json:"fileRef"`
	URL     string `json:"uploadUrl"`
}

// FileStore is implemented by the object storage backend.
type FileStore interface {
	// PresignUpload issues an upload ticket for a new object. The
	// fileName is advisory only (used to shape the object key); the
	// returned FileRef is the authoritative handle.
	PresignUpload(ctx context.Context, fileName string) (*UploadTicket, error)

	// PresignDownload returns a short-lived URL for reading the object
	// behind fileRef.
	PresignDownload(ctx context.Context, fileRef string) (string, error)

	// Delete removes the object behind fileRef.
	Delete(ctx context.Context, fileRef string) error
}
