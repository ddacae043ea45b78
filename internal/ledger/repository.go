package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/internal/models"
)

var (
	errInsufficientFunds = errors.New("insufficient funds")
	errUserNotFound      = errors.New("user not found")
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// CreditTx adds amount to the user's balance and records a ledger entry.
// Returns the new balance. Call within a transaction.
func (r *Repository) CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error) {
	var newBalance int64
	err := tx.QueryRow(ctx, `
		UPDATE users SET balance_cents = balance_cents + $1
		WHERE id = $2
		RETURNING balance_cents
	`, amountCents, userID).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errUserNotFound
		}
		return 0, err
	}
	if err := r.insertEntryTx(ctx, tx, userID, refID, entryType, amountCents, newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// DebitTx atomically deducts amount if balance_cents >= amount and records
// a ledger entry. The conditional UPDATE is the non-negativity guard: two
// concurrent debits can never both pass on the same funds.
func (r *Repository) DebitTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error) {
	var newBalance int64
	err := tx.QueryRow(ctx, `
		UPDATE users SET balance_cents = balance_cents - $1
		WHERE id = $2 AND balance_cents >= $1
		RETURNING balance_cents
	`, amountCents, userID).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
				return 0, err
			}
			if !exists {
				return 0, errUserNotFound
			}
			return 0, errInsufficientFunds
		}
		return 0, err
	}
	if err := r.insertEntryTx(ctx, tx, userID, refID, entryType, -amountCents, newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (r *Repository) insertEntryTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, refID *uuid.UUID, entryType string, amountCents, balanceAfter int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, user_id, ref_id, entry_type, amount_cents, balance_after_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), userID, refID, entryType, amountCents, balanceAfter)
	return err
}

// ListForUser returns the user's ledger entries newest-first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, ref_id, entry_type, amount_cents, balance_after_cents, created_at
		FROM ledger_entries WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.RefID, &e.EntryType, &e.AmountCents, &e.BalanceAfterCents, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Balance returns the user's current balance.
func (r *Repository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `SELECT balance_cents FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errUserNotFound
		}
		return 0, err
	}
	return balance, nil
}
