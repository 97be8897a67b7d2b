package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/print-queue/internal/service"
)

// UploadHandler exposes the file transport endpoints: requesting upload
// tickets and (admin-only) deleting stored objects.
type UploadHandler struct {
	uploads *service.UploadService
	logger  *slog.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(uploads *service.UploadService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		logger:  logger,
	}
}

// HandleRequestTicket issues a presigned upload URL after validating the
// file metadata. This is phase one of the upload contract; the client
// PUTs the file to the returned URL, then POSTs /api/jobs with the
// fileRef.
//
// HTTP: POST /api/uploads (behind RequireAuth)
// REQUEST BODY: {"fileName": "part.stl", "fileSize": 1048576}
// RESPONSE:     {"fileRef": "uploads/.../abc.stl", "uploadUrl": "https://..."}
func (h *UploadHandler) HandleRequestTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"fileName"`
		FileSize int64  `json:"fileSize"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid upload request JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ticket, err := h.uploads.RequestTicket(r.Context(), req.FileName, req.FileSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// HandleDeleteFile removes an object from the file store.
//
// HTTP: DELETE /api/admin/files/{fileRef} (behind RequireAdmin)
//
// fileRef is an object key containing slashes, so the route captures it
// with a wildcard and the handler reads the wildcard value.
func (h *UploadHandler) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	fileRef := r.PathValue("*")
	if fileRef == "" {
		http.Error(w, "file reference is required", http.StatusBadRequest)
		return
	}

	if err := h.uploads.DeleteFile(r.Context(), fileRef); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
