package models

import (
	"time"

	"github.com/google/uuid"
)

// Checkout session status enum.
const (
	CheckoutStatusPending   = "pending"
	CheckoutStatusCompleted = "completed"
)

// CheckoutSession is a pending top-up at the hosted payment provider.
// The provider callback completes it and credits the ledger.
type CheckoutSession struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
