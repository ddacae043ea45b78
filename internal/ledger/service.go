package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskhive/backend/internal/models"
)

// ErrInsufficientFunds is returned when the balance is too low for a debit.
var ErrInsufficientFunds = errInsufficientFunds

// ErrUserNotFound is returned when the target user does not exist.
var ErrUserNotFound = errUserNotFound

// ErrInvalidAmount is returned for non-positive amounts.
var ErrInvalidAmount = errors.New("invalid amount")

type Service interface {
	// Credit adds amount to the user's balance in its own transaction.
	Credit(ctx context.Context, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error)
	// CreditTx is Credit inside the caller's transaction.
	CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error)
	// DebitTx subtracts amount inside the caller's transaction; fails with
	// ErrInsufficientFunds when balance < amount.
	DebitTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error)
	// Balance returns the user's current balance.
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	// History returns the user's ledger entries newest-first.
	History(ctx context.Context, userID uuid.UUID) ([]*models.LedgerEntry, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

var _ Service = (*service)(nil)

func (s *service) Credit(ctx context.Context, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error) {
	if amountCents <= 0 {
		return 0, ErrInvalidAmount
	}
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)
	newBalance, err := s.repo.CreditTx(ctx, tx, userID, amountCents, entryType, refID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (s *service) CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error) {
	if amountCents <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.repo.CreditTx(ctx, tx, userID, amountCents, entryType, refID)
}

func (s *service) DebitTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error) {
	if amountCents <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.repo.DebitTx(ctx, tx, userID, amountCents, entryType, refID)
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.Balance(ctx, userID)
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]*models.LedgerEntry, error) {
	return s.repo.ListForUser(ctx, userID)
}
