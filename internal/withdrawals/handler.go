package withdrawals

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskhive/backend/internal/auth"
	"github.com/taskhive/backend/internal/ledger"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/money"
)

type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type WithdrawalResponse struct {
	ID          string     `json:"id"`
	Amount      string     `json:"amount"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
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

// Withdraw handles POST /withdraw.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	amountCents, err := money.ToCents(req.Amount)
	if err != nil {
		http.Error(w, `{"error":"invalid amount"}`, http.StatusBadRequest)
		return
	}
	if _, err := h.svc.Request(r.Context(), ident.ID, amountCents); err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			http.Error(w, `{"error":"insufficient funds"}`, http.StatusBadRequest)
		case errors.Is(err, ledger.ErrInvalidAmount):
			http.Error(w, `{"error":"invalid amount"}`, http.StatusBadRequest)
		default:
			h.log.Error("withdraw failed", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Mine handles GET /my/withdrawals.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.svc.ListForUser(r.Context(), ident.ID)
	if err != nil {
		h.log.Error("list withdrawals failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	resp := make([]WithdrawalResponse, 0, len(list))
	for _, wd := range list {
		resp = append(resp, toResponse(wd))
	}
	writeJSON(w, http.StatusOK, map[string]any{"withdrawals": resp})
}

func toResponse(w *models.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:          w.ID.String(),
		Amount:      money.FromCents(w.AmountCents),
		Status:      w.Status,
		CreatedAt:   w.CreatedAt,
		ProcessedAt: w.ProcessedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
