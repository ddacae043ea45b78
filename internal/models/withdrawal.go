package models

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal status enum. The debit happens at request time
// (reservation-by-debit); processed only records that the payout ran.
const (
	WithdrawalStatusRequested = "requested"
	WithdrawalStatusProcessed = "processed"
)

type Withdrawal struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	AmountCents int64      `json:"amount_cents"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
