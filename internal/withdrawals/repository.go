package withdrawals

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/internal/models"
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

// CreateTx inserts the withdrawal row. Call within the request transaction,
// after the ledger debit.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error {
	return tx.QueryRow(ctx, `
		INSERT INTO withdrawals (id, user_id, amount_cents, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, w.ID, w.UserID, w.AmountCents, w.Status).Scan(&w.CreatedAt)
}

// MarkProcessed flips requested -> processed. Idempotent: a payout job
// retry on an already-processed withdrawal is a no-op.
func (r *Repository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE withdrawals SET status = $2, processed_at = now()
		WHERE id = $1 AND status = $3
	`, id, models.WithdrawalStatusProcessed, models.WithdrawalStatusRequested)
	return err
}

// ListForUser returns the user's withdrawals newest-first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Withdrawal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, amount_cents, status, created_at, processed_at
		FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err := rows.Scan(&w.ID, &w.UserID, &w.AmountCents, &w.Status, &w.CreatedAt, &w.ProcessedAt); err != nil {
			return nil, err
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
