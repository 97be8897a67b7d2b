package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/print-queue/internal/auth"
	"github.com/sakif/print-queue/internal/service"
)

// JobHandler exposes the print job lifecycle over HTTP.
//
// User-facing routes (owner-scoped) and admin routes both land here —
// the handler only parses and encodes; who may do what is decided in the
// service layer from the caller identity the auth middleware verified.
type JobHandler struct {
	jobs    *service.JobService
	uploads *service.UploadService
	logger  *slog.Logger
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(jobs *service.JobService, uploads *service.UploadService, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		jobs:    jobs,
		uploads: uploads,
		logger:  logger,
	}
}

// HandleSubmit creates a new print job from an already-uploaded file.
//
// HTTP: POST /api/jobs
// REQUEST BODY:
//
//	{"fileRef":"uploads/.../abc.stl","fileName":"part.stl","fileSize":1048576,"notes":"print in red"}
//
// fileRef must come from a previously issued upload ticket whose PUT
// succeeded — submitting first and uploading later would let a job point
// at an object that never materializes.
func (h *JobHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		FileRef  string `json:"fileRef"`
		FileName string `json:"fileName"`
		FileSize int64  `json:"fileSize"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid job submission JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.Submit(r.Context(), caller, service.SubmitParams{
		FileRef:  req.FileRef,
		FileName: req.FileName,
		FileSize: req.FileSize,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// HandleListMine returns the caller's own jobs, newest first.
//
// HTTP: GET /api/jobs
func (h *JobHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	jobs, err := h.jobs.ListMine(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// HandleGetByID returns a single job, owner-or-admin.
//
// HTTP: GET /api/jobs/{id}
func (h *JobHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	job, err := h.jobs.GetByID(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// HandleFileURL returns a short-lived download URL for a job's file.
//
// HTTP: GET /api/jobs/{id}/file
//
// The job lookup enforces owner-or-admin; only then is a URL signed.
func (h *JobHandler) HandleFileURL(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	job, err := h.jobs.GetByID(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	url, err := h.uploads.DownloadURL(r.Context(), job.FileRef)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// HandleListAll returns all jobs, optionally filtered by status.
//
// HTTP: GET /api/admin/jobs?status=queued (behind RequireAdmin)
func (h *JobHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	jobs, err := h.jobs.ListAll(r.Context(), caller, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// HandleSetStatus moves a job to a new status.
//
// HTTP: PATCH /api/admin/jobs/{id}/status (behind RequireAdmin)
// REQUEST BODY: {"status": "queued"}
func (h *JobHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.SetStatus(r.Context(), caller, r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// HandleSetAdminNote replaces a job's admin note.
//
// HTTP: PATCH /api/admin/jobs/{id}/admin-note (behind RequireAdmin)
// REQUEST BODY: {"adminNote": "out of red PLA, waiting on restock"}
func (h *JobHandler) HandleSetAdminNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		AdminNote string `json:"adminNote"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.SetAdminNote(r.Context(), caller, r.PathValue("id"), req.AdminNote)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}
