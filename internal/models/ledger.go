package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger entry_type enums. Every balance mutation writes one entry.
const (
	LedgerEntryTaskReward  = "task_reward"
	LedgerEntryWithdrawal  = "withdrawal"
	LedgerEntryTopup       = "topup"
	LedgerEntryAdminCredit = "admin_credit"
)

type LedgerEntry struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	RefID             *uuid.UUID `json:"ref_id,omitempty"`
	EntryType         string     `json:"entry_type"`
	AmountCents       int64      `json:"amount_cents"`
	BalanceAfterCents int64      `json:"balance_after_cents"`
	CreatedAt         time.Time  `json:"created_at"`
}
