// Package payouts runs the background leg of a withdrawal: the funds left
// the balance at request time, the worker only records that the payout ran.
package payouts

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

type ProcessWithdrawalArgs struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
}

func (ProcessWithdrawalArgs) Kind() string { return "process_withdrawal" }

// WithdrawalStore is the contract the worker needs to finish a withdrawal.
type WithdrawalStore interface {
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

type ProcessWithdrawalWorker struct {
	river.WorkerDefaults[ProcessWithdrawalArgs]
	store WithdrawalStore
	log   *slog.Logger
}

func NewProcessWithdrawalWorker(store WithdrawalStore, log *slog.Logger) *ProcessWithdrawalWorker {
	if log == nil {
		log = slog.Default()
	}
	return &ProcessWithdrawalWorker{store: store, log: log}
}

func (w *ProcessWithdrawalWorker) Work(ctx context.Context, job *river.Job[ProcessWithdrawalArgs]) error {
	if err := w.store.MarkProcessed(ctx, job.Args.WithdrawalID); err != nil {
		return err
	}
	w.log.Info("withdrawal processed", "withdrawal_id", job.Args.WithdrawalID)
	return nil
}
