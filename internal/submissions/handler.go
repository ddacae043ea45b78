package submissions

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/backend/internal/auth"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/money"
	"github.com/taskhive/backend/internal/tasks"
	"github.com/taskhive/backend/internal/uploads"
)

// maxMultipartMemory bounds in-memory buffering while parsing uploads.
const maxMultipartMemory = 32 * 1024 * 1024

// FileSaver stores one uploaded file and returns its descriptor.
// Implemented by *uploads.Store.
type FileSaver interface {
	Save(fh *multipart.FileHeader) (models.SubmissionFile, error)
}

type SubmissionResponse struct {
	ID        string                  `json:"id"`
	TaskID    string                  `json:"task_id"`
	UserID    string                  `json:"user_id"`
	Message   string                  `json:"message"`
	Status    string                  `json:"status"`
	AdminNote *string                 `json:"admin_note,omitempty"`
	Files     []models.SubmissionFile `json:"files"`
	CreatedAt time.Time               `json:"created_at"`
}

type AdminSubmissionResponse struct {
	SubmissionResponse
	Username  string `json:"username"`
	TaskTitle string `json:"task_title"`
}

type ReviewRequest struct {
	Action    string  `json:"action"`
	AdminNote *string `json:"admin_note,omitempty"`
}

type Handler struct {
	svc   Service
	files FileSaver
	log   *slog.Logger
}

func NewHandler(svc Service, files FileSaver, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, files: files, log: log}
}

// Submit handles POST /submissions: multipart form with task_id, message
// and up to five proof files under the "files" field.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		http.Error(w, `{"error":"invalid multipart form"}`, http.StatusBadRequest)
		return
	}
	taskID, err := uuid.Parse(r.FormValue("task_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid task_id"}`, http.StatusBadRequest)
		return
	}
	message := r.FormValue("message")

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["files"]
	}
	if len(headers) > uploads.MaxFiles {
		http.Error(w, `{"error":"too many files"}`, http.StatusBadRequest)
		return
	}
	files := make([]models.SubmissionFile, 0, len(headers))
	for _, fh := range headers {
		f, err := h.files.Save(fh)
		if err != nil {
			if errors.Is(err, uploads.ErrFileTooLarge) {
				http.Error(w, `{"error":"file too large"}`, http.StatusBadRequest)
				return
			}
			h.log.Error("store upload failed", "error", err)
			http.Error(w, `{"error":"failed to store file"}`, http.StatusInternalServerError)
			return
		}
		files = append(files, f)
	}

	sub, err := h.svc.Submit(r.Context(), taskID, ident.ID, files, message)
	if err != nil {
		switch {
		case errors.Is(err, tasks.ErrNotFound):
			http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		case errors.Is(err, tasks.ErrForbiddenAssignee):
			http.Error(w, `{"error":"task is assigned to another user"}`, http.StatusForbidden)
		case errors.Is(err, tasks.ErrNotOpen):
			http.Error(w, `{"error":"task does not accept submissions"}`, http.StatusBadRequest)
		default:
			h.log.Error("create submission failed", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "submission": toResponse(sub)})
}

// Mine handles GET /my/submissions.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.svc.ListForUser(r.Context(), ident.ID)
	if err != nil {
		h.log.Error("list submissions failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	resp := make([]SubmissionResponse, 0, len(list))
	for _, s := range list {
		resp = append(resp, toResponse(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": resp})
}

// AdminList handles GET /admin/submissions.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListForAdmin(r.Context())
	if err != nil {
		h.log.Error("admin list submissions failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	resp := make([]AdminSubmissionResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, AdminSubmissionResponse{
			SubmissionResponse: toResponse(&a.Submission),
			Username:           a.Username,
			TaskTitle:          a.TaskTitle,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": resp})
}

// Review handles POST /admin/submissions/{id}/review.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid submission id"}`, http.StatusBadRequest)
		return
	}
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	result, err := h.svc.Review(r.Context(), id, req.Action, req.AdminNote)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, `{"error":"submission not found"}`, http.StatusNotFound)
		case errors.Is(err, ErrInvalidAction):
			http.Error(w, `{"error":"action must be approve or reject"}`, http.StatusBadRequest)
		case errors.Is(err, ErrAlreadyReviewed):
			http.Error(w, `{"error":"submission already reviewed"}`, http.StatusBadRequest)
		default:
			h.log.Error("review failed", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	if result.Approved {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":         true,
			"credited":   money.FromCents(result.CreditedCents),
			"newBalance": money.FromCents(result.NewBalanceCents),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rejected": true})
}

func toResponse(s *models.Submission) SubmissionResponse {
	files := s.Files
	if files == nil {
		files = []models.SubmissionFile{}
	}
	return SubmissionResponse{
		ID:        s.ID.String(),
		TaskID:    s.TaskID.String(),
		UserID:    s.UserID.String(),
		Message:   s.Message,
		Status:    s.Status,
		AdminNote: s.AdminNote,
		Files:     files,
		CreatedAt: s.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
