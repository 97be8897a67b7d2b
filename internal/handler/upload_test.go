package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sakif/print-queue/internal/apperror"
	"github.com/sakif/print-queue/internal/handler"
	"github.com/sakif/print-queue/internal/service"
	"github.com/sakif/print-queue/internal/storage"
	"github.com/stretchr/testify/assert"
)

// MockFileStore implements a fast, mock file store for handler testing
// without talking to real object storage.
type MockFileStore struct {
	CapturedFileName string
	CapturedFileRef  string
	ReturnTicket     *storage.UploadTicket
	ReturnURL        string
	ReturnErr        error
}

func (m *MockFileStore) PresignUpload(ctx context.Context, fileName string) (*storage.UploadTicket, error) {
	m.CapturedFileName = fileName
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnTicket, nil
}

func (m *MockFileStore) PresignDownload(ctx context.Context, fileRef string) (string, error) {
	m.CapturedFileRef = fileRef
	if m.ReturnErr != nil {
		return "", m.ReturnErr
	}
	return m.ReturnURL, nil
}

func (m *MockFileStore) Delete(ctx context.Context, fileRef string) error {
	m.CapturedFileRef = fileRef
	return m.ReturnErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newUploadHandler(store *MockFileStore) *handler.UploadHandler {
	logger := testLogger()
	uploads := service.NewUploadService(store, logger)
	return handler.NewUploadHandler(uploads, logger)
}

func TestUploadHandler_HandleRequestTicket(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		store := &MockFileStore{
			ReturnTicket: &storage.UploadTicket{
				FileRef: "uploads/2026/09/01/abc123.stl",
				URL:     "https://bucket.example.com/presigned-put",
			},
		}
		h := newUploadHandler(store)

		reqBody := `{"fileName":"benchy.stl","fileSize":1048576}`
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewBufferString(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		h.HandleRequestTicket(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var ticket storage.UploadTicket
		err := json.NewDecoder(rr.Body).Decode(&ticket)
		assert.NoError(t, err)
		assert.Equal(t, "uploads/2026/09/01/abc123.stl", ticket.FileRef)
		assert.Equal(t, "https://bucket.example.com/presigned-put", ticket.URL)

		assert.Equal(t, "benchy.stl", store.CapturedFileName)
	})

	t.Run("invalid request body", func(t *testing.T) {
		store := &MockFileStore{}
		h := newUploadHandler(store)

		reqBody := `{"fileName":`
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewBufferString(reqBody))
		rr := httptest.NewRecorder()

		h.HandleRequestTicket(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("disallowed extension", func(t *testing.T) {
		store := &MockFileStore{}
		h := newUploadHandler(store)

		reqBody := `{"fileName":"malware.exe","fileSize":1024}`
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewBufferString(reqBody))
		rr := httptest.NewRecorder()

		h.HandleRequestTicket(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		// Validation must short-circuit before the store is touched.
		assert.Empty(t, store.CapturedFileName)
	})

	t.Run("oversize file", func(t *testing.T) {
		store := &MockFileStore{}
		h := newUploadHandler(store)

		reqBody := `{"fileName":"huge.stl","fileSize":52428801}`
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewBufferString(reqBody))
		rr := httptest.NewRecorder()

		h.HandleRequestTicket(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, store.CapturedFileName)
	})

	t.Run("store failure maps to 502", func(t *testing.T) {
		store := &MockFileStore{
			ReturnErr: apperror.Transport("presign upload", errors.New("connection refused")),
		}
		h := newUploadHandler(store)

		reqBody := `{"fileName":"benchy.stl","fileSize":1024}`
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewBufferString(reqBody))
		rr := httptest.NewRecorder()

		h.HandleRequestTicket(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestUploadHandler_HandleDeleteFile(t *testing.T) {
	t.Run("deletes by wildcard path", func(t *testing.T) {
		store := &MockFileStore{}
		h := newUploadHandler(store)

		req := httptest.NewRequest(http.MethodDelete, "/api/admin/files/uploads/2026/09/01/abc123.stl", nil)
		req.SetPathValue("*", "uploads/2026/09/01/abc123.stl")
		rr := httptest.NewRecorder()

		h.HandleDeleteFile(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "uploads/2026/09/01/abc123.stl", store.CapturedFileRef)
	})

	t.Run("missing file reference", func(t *testing.T) {
		store := &MockFileStore{}
		h := newUploadHandler(store)

		req := httptest.NewRequest(http.MethodDelete, "/api/admin/files/", nil)
		rr := httptest.NewRecorder()

		h.HandleDeleteFile(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, store.CapturedFileRef)
	})

	t.Run("store failure maps to 502", func(t *testing.T) {
		store := &MockFileStore{
			ReturnErr: apperror.Transport("delete object", errors.New("timeout")),
		}
		h := newUploadHandler(store)

		req := httptest.NewRequest(http.MethodDelete, "/api/admin/files/uploads/x.stl", nil)
		req.SetPathValue("*", "uploads/x.stl")
		rr := httptest.NewRecorder()

		h.HandleDeleteFile(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}
