package submissions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/tasks"
)

// ErrNotFound is returned when the submission does not exist.
var ErrNotFound = errNotFound

// ErrAlreadyReviewed is returned when reviewing a submission that already
// left the pending state. A second approval would double-credit the
// submitter, so this is enforced, not just flagged.
var ErrAlreadyReviewed = errors.New("submission already reviewed")

// ErrInvalidAction is returned for review actions other than approve/reject.
var ErrInvalidAction = errors.New("invalid review action")

// TxBeginner abstracts transaction creation so tests don't need a pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the submission persistence interface. Implemented by *Repository.
type Store interface {
	CreateTx(ctx context.Context, tx pgx.Tx, s *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	MarkReviewedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, note *string) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Submission, error)
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]*models.Submission, error)
	ListForAdmin(ctx context.Context) ([]*models.AdminSubmission, error)
}

// TaskStore is the slice of the task store the workflows need.
// Implemented by *tasks.Repository.
type TaskStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ClaimForSubmissionTx(ctx context.Context, tx pgx.Tx, taskID, userID uuid.UUID) error
	CompleteTx(ctx context.Context, tx pgx.Tx, taskID uuid.UUID) error
	ReopenTx(ctx context.Context, tx pgx.Tx, taskID uuid.UUID) error
}

// Ledger is the slice of the ledger the review workflow needs.
type Ledger interface {
	CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64, entryType string, refID *uuid.UUID) (int64, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ReviewResult reports what a review did.
type ReviewResult struct {
	Approved        bool
	CreditedCents   int64
	NewBalanceCents int64
}

type Service interface {
	// Submit creates a pending submission and moves the task to submitted,
	// in one transaction.
	Submit(ctx context.Context, taskID, userID uuid.UUID, files []models.SubmissionFile, message string) (*models.Submission, error)
	// Review applies approve/reject with all side effects in one transaction.
	Review(ctx context.Context, submissionID uuid.UUID, action string, note *string) (*ReviewResult, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Submission, error)
	ListForAdmin(ctx context.Context) ([]*models.AdminSubmission, error)
}

type service struct {
	db     TxBeginner
	store  Store
	tasks  TaskStore
	ledger Ledger
}

func NewService(db TxBeginner, store Store, taskStore TaskStore, ledger Ledger) Service {
	return &service{db: db, store: store, tasks: taskStore, ledger: ledger}
}

var _ Service = (*service)(nil)

func (s *service) Submit(ctx context.Context, taskID, userID uuid.UUID, files []models.SubmissionFile, message string) (*models.Submission, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.tasks.ClaimForSubmissionTx(ctx, tx, taskID, userID); err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.SubmissionFile{}
	}
	sub := &models.Submission{
		ID:      uuid.New(),
		TaskID:  taskID,
		UserID:  userID,
		Message: message,
		Status:  models.SubmissionStatusPending,
		Files:   files,
	}
	if err := s.store.CreateTx(ctx, tx, sub); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *service) Review(ctx context.Context, submissionID uuid.UUID, action string, note *string) (*ReviewResult, error) {
	var status string
	switch action {
	case models.ReviewActionApprove:
		status = models.SubmissionStatusApproved
	case models.ReviewActionReject:
		status = models.SubmissionStatusRejected
	default:
		return nil, ErrInvalidAction
	}

	sub, err := s.store.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The pending->terminal transition is a conditional update; losing the
	// race means someone else reviewed first.
	ok, err := s.store.MarkReviewedTx(ctx, tx, sub.ID, status, note)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyReviewed
	}

	result := &ReviewResult{Approved: status == models.SubmissionStatusApproved}
	if result.Approved {
		// Reward is whatever the task says at approval time; 0 if the task
		// has gone missing.
		var reward int64
		task, err := s.tasks.GetByID(ctx, sub.TaskID)
		switch {
		case err == nil:
			reward = task.RewardCents
			if err := s.tasks.CompleteTx(ctx, tx, sub.TaskID); err != nil {
				return nil, err
			}
		case errors.Is(err, tasks.ErrNotFound):
			// Submission outlived its task; approve with nothing to pay.
		default:
			return nil, err
		}

		if reward > 0 {
			newBalance, err := s.ledger.CreditTx(ctx, tx, sub.UserID, reward, models.LedgerEntryTaskReward, &sub.ID)
			if err != nil {
				return nil, err
			}
			result.CreditedCents = reward
			result.NewBalanceCents = newBalance
		} else {
			balance, err := s.ledger.Balance(ctx, sub.UserID)
			if err != nil {
				return nil, err
			}
			result.NewBalanceCents = balance
		}
	} else {
		if err := s.tasks.ReopenTx(ctx, tx, sub.TaskID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Submission, error) {
	return s.store.ListForUser(ctx, userID)
}

func (s *service) ListForAdmin(ctx context.Context) ([]*models.AdminSubmission, error) {
	return s.store.ListForAdmin(ctx)
}
