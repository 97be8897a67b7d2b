package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/print-queue/internal/apperror"
	"github.com/sakif/print-queue/internal/storage"
)

// mockFileStore implements storage.FileStore without any S3 machinery.
type mockFileStore struct {
	lastFileName string
	deleted      []string
	failWith     error
}

func (m *mockFileStore) PresignUpload(_ context.Context, fileName string) (*storage.UploadTicket, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.lastFileName = fileName
	return &storage.UploadTicket{
		FileRef: "uploads/test/" + fileName,
		URL:     "https://store.example.com/put/" + fileName,
	}, nil
}

func (m *mockFileStore) PresignDownload(_ context.Context, fileRef string) (string, error) {
	if m.failWith != nil {
		return "", m.failWith
	}
	return "https://store.example.com/get/" + fileRef, nil
}

func (m *mockFileStore) Delete(_ context.Context, fileRef string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.deleted = append(m.deleted, fileRef)
	return nil
}

func newTestUploadService() (*UploadService, *mockFileStore) {
	files := &mockFileStore{}
	return NewUploadService(files, testLogger()), files
}

func TestRequestTicket(t *testing.T) {
	svc, files := newTestUploadService()

	ticket, err := svc.RequestTicket(context.Background(), "part.stl", 1_048_576)
	if err != nil {
		t.Fatalf("RequestTicket() error = %v", err)
	}
	if ticket.FileRef == "" || ticket.URL == "" {
		t.Errorf("ticket incomplete: %+v", ticket)
	}
	if files.lastFileName != "part.stl" {
		t.Errorf("store saw file name %q", files.lastFileName)
	}
}

// The service is the trust boundary: whatever the browser validated,
// a bad file never reaches the store.
func TestRequestTicket_RejectsBeforeStore(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		size     int64
	}{
		{"unsupported extension", "model.step", 1024},
		{"oversize", "part.stl", 60 * 1024 * 1024},
		{"empty name", "", 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, files := newTestUploadService()

			_, err := svc.RequestTicket(context.Background(), tt.fileName, tt.size)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
			if files.lastFileName != "" {
				t.Error("store was called for an invalid file")
			}
		})
	}
}

func TestRequestTicket_TransportFailure(t *testing.T) {
	svc, files := newTestUploadService()
	files.failWith = apperror.Transport("upload URL signing", errors.New("connection refused"))

	_, err := svc.RequestTicket(context.Background(), "part.stl", 1024)
	if !errors.Is(err, apperror.ErrTransport) {
		t.Errorf("error = %v, want ErrTransport", err)
	}
}

func TestDownloadURL(t *testing.T) {
	svc, _ := newTestUploadService()

	url, err := svc.DownloadURL(context.Background(), "uploads/test/part.stl")
	if err != nil {
		t.Fatalf("DownloadURL() error = %v", err)
	}
	if url == "" {
		t.Error("DownloadURL() returned an empty URL")
	}

	if _, err := svc.DownloadURL(context.Background(), "  "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("empty fileRef: error = %v, want ErrValidation", err)
	}
}

func TestDeleteFile(t *testing.T) {
	svc, files := newTestUploadService()

	if err := svc.DeleteFile(context.Background(), "uploads/test/part.stl"); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	if len(files.deleted) != 1 || files.deleted[0] != "uploads/test/part.stl" {
		t.Errorf("deleted = %v", files.deleted)
	}

	if err := svc.DeleteFile(context.Background(), ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("empty fileRef: error = %v, want ErrValidation", err)
	}
}
