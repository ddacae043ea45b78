package payments

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskhive/backend/internal/models"
)

// --- noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called. ---

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

// --- Store mock ---

type mockStore struct {
	sessions map[uuid.UUID]*models.CheckoutSession
}

func newMockStore() *mockStore {
	return &mockStore{sessions: make(map[uuid.UUID]*models.CheckoutSession)}
}

func (m *mockStore) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

func (m *mockStore) Create(_ context.Context, s *models.CheckoutSession) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *mockStore) CompleteTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.CheckoutSession, bool, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, false, errSessionNotFound
	}
	if s.Status != models.CheckoutStatusPending {
		return s, false, nil
	}
	s.Status = models.CheckoutStatusCompleted
	return s, true, nil
}

// --- Ledger mock ---

type mockLedger struct {
	balances map[uuid.UUID]int64
	credits  int
}

func (m *mockLedger) CreditTx(_ context.Context, _ pgx.Tx, userID uuid.UUID, amountCents int64, _ string, _ *uuid.UUID) (int64, error) {
	m.credits++
	m.balances[userID] += amountCents
	return m.balances[userID], nil
}

func newTestService() (Service, *mockStore, *mockLedger) {
	store := newMockStore()
	ledger := &mockLedger{balances: make(map[uuid.UUID]int64)}
	return NewService(store, ledger, "https://pay.example.com"), store, ledger
}

func TestCreateCheckout_ReturnsHostedURL(t *testing.T) {
	svc, store, _ := newTestService()

	url, err := svc.CreateCheckout(context.Background(), uuid.New(), 2500)
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if !strings.HasPrefix(url, "https://pay.example.com/checkout/") {
		t.Errorf("unexpected checkout URL %q", url)
	}
	if len(store.sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(store.sessions))
	}
	for _, s := range store.sessions {
		if s.Status != models.CheckoutStatusPending {
			t.Errorf("expected pending session, got %q", s.Status)
		}
		if !strings.HasSuffix(url, s.ID.String()) {
			t.Errorf("URL %q does not reference session %s", url, s.ID)
		}
	}
}

func TestCompleteCheckout_CreditsOnce(t *testing.T) {
	svc, store, ledger := newTestService()
	userID := uuid.New()

	if _, err := svc.CreateCheckout(context.Background(), userID, 2500); err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	var sessionID uuid.UUID
	for id := range store.sessions {
		sessionID = id
	}

	if err := svc.CompleteCheckout(context.Background(), sessionID); err != nil {
		t.Fatalf("CompleteCheckout: %v", err)
	}
	if ledger.balances[userID] != 2500 {
		t.Errorf("expected balance 2500, got %d", ledger.balances[userID])
	}

	// Duplicate provider callback: acknowledged, not re-credited.
	if err := svc.CompleteCheckout(context.Background(), sessionID); err != nil {
		t.Fatalf("duplicate CompleteCheckout: %v", err)
	}
	if ledger.credits != 1 {
		t.Errorf("expected exactly one credit, got %d", ledger.credits)
	}
	if ledger.balances[userID] != 2500 {
		t.Errorf("expected balance 2500 after duplicate callback, got %d", ledger.balances[userID])
	}
}

func TestCompleteCheckout_UnknownSession(t *testing.T) {
	svc, _, ledger := newTestService()

	err := svc.CompleteCheckout(context.Background(), uuid.New())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if ledger.credits != 0 {
		t.Error("no credit expected")
	}
}
