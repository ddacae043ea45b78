package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskhive/backend/internal/models"
)

// ErrSessionNotFound is returned when the provider callback references an
// unknown session.
var ErrSessionNotFound = errSessionNotFound

// Store is the checkout-session persistence interface. Implemented by *Repository.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, s *models.CheckoutSession) error
	CompleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.CheckoutSession, bool, error)
}

// Ledger is the slice of the ledger the top-up flow needs.
type Ledger interface {
	CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error)
}

type Service interface {
	// CreateCheckout records a pending session and returns the hosted
	// payment page URL for it.
	CreateCheckout(ctx context.Context, userID uuid.UUID, amountCents int64) (string, error)
	// CompleteCheckout is the provider callback: completes the session and
	// credits the ledger. Duplicate callbacks are no-ops.
	CompleteCheckout(ctx context.Context, sessionID uuid.UUID) error
}

type service struct {
	store           Store
	ledger          Ledger
	checkoutBaseURL string
}

func NewService(store Store, ledgerSvc Ledger, checkoutBaseURL string) Service {
	return &service{store: store, ledger: ledgerSvc, checkoutBaseURL: checkoutBaseURL}
}

var _ Service = (*service)(nil)

func (s *service) CreateCheckout(ctx context.Context, userID uuid.UUID, amountCents int64) (string, error) {
	sess := &models.CheckoutSession{
		ID:          uuid.New(),
		UserID:      userID,
		AmountCents: amountCents,
		Status:      models.CheckoutStatusPending,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/checkout/%s", s.checkoutBaseURL, sess.ID), nil
}

func (s *service) CompleteCheckout(ctx context.Context, sessionID uuid.UUID) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sess, completed, err := s.store.CompleteTx(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if !completed {
		// Already completed and credited; acknowledge without re-crediting.
		return tx.Commit(ctx)
	}
	if _, err := s.ledger.CreditTx(ctx, tx, sess.UserID, sess.AmountCents, models.LedgerEntryTopup, &sess.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
