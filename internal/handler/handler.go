package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eduai/assistant/internal/grader"
	"github.com/eduai/assistant/internal/model"
	"github.com/eduai/assistant/internal/store"
	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps submission uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// Grader grades an uploaded document. Satisfied by grader.Grader.
type Grader interface {
	Grade(ctx context.Context, doc []byte, sub grader.Submission) model.GradingRecord
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	grader Grader
}

// New creates a new Handler.
func New(s *store.Store, g Grader) *Handler {
	return &Handler{store: s, grader: g}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Post("/api/grade", h.handleGrade)
	r.Get("/api/submissions", h.handleListSubmissions)
	r.Get("/api/submissions/{id}", h.handleGetSubmission)
	r.Get("/api/export", h.handleExport)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGrade accepts a multipart upload ("file" plus student metadata
// fields), grades it, stores the result, and returns the full record.
func (h *Handler) handleGrade(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	doc, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}
	if len(doc) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	sub := grader.Submission{
		StudentName: strings.TrimSpace(r.FormValue("student_name")),
		RollNumber:  strings.TrimSpace(r.FormValue("roll_number")),
		Subject:     strings.TrimSpace(r.FormValue("subject")),
	}

	rec := h.grader.Grade(r.Context(), doc, sub)

	id, err := h.store.InsertSubmission(rec, sub.Subject)
	if err != nil {
		slog.Error("store submission failed", "student", rec.StudentName, "error", err)
		writeError(w, http.StatusInternalServerError, "store submission: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"record": rec,
	})
}

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	var (
		subs []model.StoredSubmission
		err  error
	)
	if roll := r.URL.Query().Get("roll_number"); roll != "" {
		subs, err = h.store.ListSubmissionsByRoll(roll)
	} else {
		subs, err = h.store.ListSubmissions()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if subs == nil {
		subs = []model.StoredSubmission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sub, err := h.store.GetSubmission(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.store.ExportAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, export)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
