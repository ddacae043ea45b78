package payments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskhive/backend/internal/auth"
	"github.com/taskhive/backend/internal/money"
)

type CreateCheckoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// WebhookRequest is the single callback contract with the payment
// provider: a session id and its final status.
type WebhookRequest struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
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

// CreateCheckoutSession handles POST /payment/create-checkout-session.
func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	amountCents, err := money.ToCents(req.Amount)
	if err != nil {
		http.Error(w, `{"error":"invalid amount"}`, http.StatusBadRequest)
		return
	}
	url, err := h.svc.CreateCheckout(r.Context(), ident.ID, amountCents)
	if err != nil {
		h.log.Error("create checkout failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

// Webhook handles POST /payment/webhook, called by the payment provider.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		http.Error(w, `{"error":"invalid session_id"}`, http.StatusBadRequest)
		return
	}
	if req.Status != "completed" {
		// Nothing to do for cancelled/failed checkouts; the session stays pending.
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	if err := h.svc.CompleteCheckout(r.Context(), sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
		h.log.Error("complete checkout failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
