package withdrawals

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskhive/backend/internal/ledger"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/payouts"
)

// Store is the withdrawal persistence interface. Implemented by *Repository.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	CreateTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Withdrawal, error)
}

// Ledger is the slice of the ledger the withdrawal workflow needs.
type Ledger interface {
	DebitTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error)
}

// EnqueuePayoutTxFunc enqueues a payout job within the given transaction.
// Provided by main using river.Client.InsertTx.
type EnqueuePayoutTxFunc func(ctx context.Context, tx pgx.Tx, args payouts.ProcessWithdrawalArgs) error

type Service interface {
	// Request debits the balance immediately (reservation-by-debit), records
	// the withdrawal as requested and enqueues the payout — one transaction.
	Request(ctx context.Context, userID uuid.UUID, amountCents int64) (*models.Withdrawal, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Withdrawal, error)
}

type service struct {
	store         Store
	ledger        Ledger
	enqueuePayout EnqueuePayoutTxFunc
}

func NewService(store Store, ledgerSvc Ledger, enqueuePayout EnqueuePayoutTxFunc) Service {
	return &service{store: store, ledger: ledgerSvc, enqueuePayout: enqueuePayout}
}

var _ Service = (*service)(nil)

func (s *service) Request(ctx context.Context, userID uuid.UUID, amountCents int64) (*models.Withdrawal, error) {
	if amountCents <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	w := &models.Withdrawal{
		ID:          uuid.New(),
		UserID:      userID,
		AmountCents: amountCents,
		Status:      models.WithdrawalStatusRequested,
	}
	if _, err := s.ledger.DebitTx(ctx, tx, userID, amountCents, models.LedgerEntryWithdrawal, &w.ID); err != nil {
		return nil, err
	}
	if err := s.store.CreateTx(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := s.enqueuePayout(ctx, tx, payouts.ProcessWithdrawalArgs{WithdrawalID: w.ID}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Withdrawal, error) {
	return s.store.ListForUser(ctx, userID)
}
