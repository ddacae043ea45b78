package ledger

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

type CreditUserRequest struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Handler serves the manual ledger escape hatch for admins.
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

type EntryResponse struct {
	ID           string    `json:"id"`
	RefID        *string   `json:"ref_id,omitempty"`
	EntryType    string    `json:"entry_type"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// History handles GET /my/ledger.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.svc.History(r.Context(), ident.ID)
	if err != nil {
		h.log.Error("list ledger entries failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	resp := make([]EntryResponse, 0, len(list))
	for _, e := range list {
		out := EntryResponse{
			ID:           e.ID.String(),
			EntryType:    e.EntryType,
			Amount:       money.FromCents(e.AmountCents),
			BalanceAfter: money.FromCents(e.BalanceAfterCents),
			CreatedAt:    e.CreatedAt,
		}
		if e.RefID != nil {
			s := e.RefID.String()
			out.RefID = &s
		}
		resp = append(resp, out)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"entries": resp})
}

// CreditUser handles POST /admin/credit-user.
func (h *Handler) CreditUser(w http.ResponseWriter, r *http.Request) {
	var req CreditUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, `{"error":"invalid user_id"}`, http.StatusBadRequest)
		return
	}
	amountCents, err := money.ToCents(req.Amount)
	if err != nil {
		http.Error(w, `{"error":"invalid amount"}`, http.StatusBadRequest)
		return
	}
	newBalance, err := h.svc.Credit(r.Context(), userID, amountCents, models.LedgerEntryAdminCredit, nil)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		case errors.Is(err, ErrInvalidAmount):
			http.Error(w, `{"error":"invalid amount"}`, http.StatusBadRequest)
		default:
			h.log.Error("credit user failed", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "newBalance": money.FromCents(newBalance)})
}
