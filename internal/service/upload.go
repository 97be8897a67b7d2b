package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/print-queue/internal/apperror"
	"github.com/sakif/print-queue/internal/storage"
	"github.com/sakif/print-queue/internal/validate"
)

// UploadService fronts the file store with the upload rules.
//
// The two-phase upload contract: the client asks RequestTicket for a
// presigned PUT URL, transfers the bytes out-of-band, and only then
// submits a job carrying the ticket's FileRef. Validation here is the
// trust boundary — whatever the browser checked before asking does not
// count.
type UploadService struct {
	files  storage.FileStore
	logger *slog.Logger
}

// NewUploadService creates an UploadService.
func NewUploadService(files storage.FileStore, logger *slog.Logger) *UploadService {
	return &UploadService{
		files:  files,
		logger: logger,
	}
}

// RequestTicket validates the file metadata and, on success, issues an
// upload ticket. A bad extension or oversize file never reaches the
// object store.
func (s *UploadService) RequestTicket(ctx context.Context, fileName string, fileSize int64) (*storage.UploadTicket, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, apperror.ValidationFailed("fileName", "file name is required")
	}

	if err := validate.CheckFile(fileName, fileSize); err != nil {
		return nil, err
	}

	ticket, err := s.files.PresignUpload(ctx, fileName)
	if err != nil {
		s.logger.Error("failed to issue upload ticket",
			slog.String("fileName", fileName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("upload ticket issued",
		slog.String("fileRef", ticket.FileRef),
		slog.String("fileName", fileName),
		slog.Int64("fileSize", fileSize),
	)

	return ticket, nil
}

// DownloadURL returns a short-lived URL for the object behind fileRef.
// Access control happens upstream: callers reach this only through a job
// record they were allowed to read.
func (s *UploadService) DownloadURL(ctx context.Context, fileRef string) (string, error) {
	fileRef = strings.TrimSpace(fileRef)
	if fileRef == "" {
		return "", apperror.ValidationFailed("fileRef", "file reference is required")
	}

	return s.files.PresignDownload(ctx, fileRef)
}

// DeleteFile removes the object behind fileRef from the store. Jobs
// referencing it are not touched — job records are never deleted, so an
// admin cleaning up storage leaves the bookkeeping intact.
func (s *UploadService) DeleteFile(ctx context.Context, fileRef string) error {
	fileRef = strings.TrimSpace(fileRef)
	if fileRef == "" {
		return apperror.ValidationFailed("fileRef", "file reference is required")
	}

	if err := s.files.Delete(ctx, fileRef); err != nil {
		s.logger.Error("failed to delete file",
			slog.String("fileRef", fileRef),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.logger.Info("file deleted", slog.String("fileRef", fileRef))
	return nil
}
