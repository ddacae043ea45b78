package tasks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskhive/backend/internal/auth"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/money"
)

type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Reward      decimal.Decimal `json:"reward"`
	Tags        []string        `json:"tags"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Reward      string     `json:"reward"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// List handles GET /tasks. Public, no auth.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		h.log.Error("list tasks failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	resp := make([]TaskResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, taskToResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": resp})
}

// Create handles POST /tasks. Admin only.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Description == "" {
		http.Error(w, `{"error":"title and description are required"}`, http.StatusBadRequest)
		return
	}
	// Reward defaults to 0 when absent.
	var rewardCents int64
	if !req.Reward.IsZero() {
		var err error
		rewardCents, err = money.ToCents(req.Reward)
		if err != nil {
			http.Error(w, `{"error":"invalid reward"}`, http.StatusBadRequest)
			return
		}
	}
	t, err := h.svc.Create(r.Context(), req.Title, req.Description, rewardCents, req.Tags, ident.ID)
	if err != nil {
		h.log.Error("create task failed", "error", err)
		http.Error(w, `{"error":"create task failed"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"task": taskToResponse(t)})
}

// Take handles POST /tasks/{id}/take. Auth required.
func (h *Handler) Take(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid task id"}`, http.StatusBadRequest)
		return
	}
	t, err := h.svc.Take(r.Context(), taskID, ident.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		case errors.Is(err, ErrNotOpen):
			http.Error(w, `{"error":"task is not open"}`, http.StatusBadRequest)
		default:
			h.log.Error("take task failed", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "task": taskToResponse(t)})
}

func taskToResponse(t *models.Task) TaskResponse {
	out := TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Reward:      money.FromCents(t.RewardCents),
		Tags:        t.Tags,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
	if t.AssignedTo != nil {
		s := t.AssignedTo.String()
		out.AssignedTo = &s
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
