package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/internal/models"
)

var errSessionNotFound = errors.New("checkout session not found")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *Repository) Create(ctx context.Context, s *models.CheckoutSession) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO checkout_sessions (id, user_id, amount_cents, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, s.ID, s.UserID, s.AmountCents, s.Status).Scan(&s.CreatedAt)
}

// CompleteTx flips pending -> completed and returns the session. The
// conditional UPDATE makes duplicate provider callbacks harmless: the
// second one completes nothing and credits nothing.
func (r *Repository) CompleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.CheckoutSession, bool, error) {
	var s models.CheckoutSession
	err := tx.QueryRow(ctx, `
		UPDATE checkout_sessions SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING id, user_id, amount_cents, status, created_at
	`, id, models.CheckoutStatusCompleted, models.CheckoutStatusPending).
		Scan(&s.ID, &s.UserID, &s.AmountCents, &s.Status, &s.CreatedAt)
	if err == nil {
		return &s, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	// Zero rows: missing session or one already completed.
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, amount_cents, status, created_at
		FROM checkout_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.AmountCents, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, errSessionNotFound
		}
		return nil, false, err
	}
	return &s, false, nil
}
