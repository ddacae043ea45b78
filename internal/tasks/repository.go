package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/internal/models"
)

var (
	errNotFound          = errors.New("task not found")
	errNotOpen           = errors.New("task is not open")
	errForbiddenAssignee = errors.New("task is assigned to another user")
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, title, description, reward_cents, tags, created_by, status, assigned_to, created_at, completed_at`

func (r *Repository) Create(ctx context.Context, t *models.Task) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, reward_cents, tags, created_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, t.ID, t.Title, t.Description, t.RewardCents, t.Tags, t.CreatedBy, t.Status).Scan(&t.CreatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, err
	}
	return t, nil
}

// Take claims an open task for userID. The status check and the claim are
// one atomic UPDATE, so two racing callers can never both claim the task.
func (r *Repository) Take(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks SET status = $3, assigned_to = $2
		WHERE id = $1 AND status = $4
		RETURNING `+taskColumns+`
	`, taskID, userID, models.TaskStatusAssigned, models.TaskStatusOpen))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	// Zero rows: distinguish missing task from a non-open one.
	if _, err := r.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return nil, errNotOpen
}

// ClaimForSubmissionTx moves the task to submitted on behalf of userID.
// It succeeds when the task is open or assigned and the assignee is userID
// or not set yet (submitting against an unassigned task claims it).
// Call within the submission transaction.
func (r *Repository) ClaimForSubmissionTx(ctx context.Context, tx pgx.Tx, taskID, userID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tasks SET status = $3, assigned_to = $2
		WHERE id = $1 AND status IN ($4, $5) AND (assigned_to IS NULL OR assigned_to = $2)
	`, taskID, userID, models.TaskStatusSubmitted, models.TaskStatusOpen, models.TaskStatusAssigned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var status string
	var assignedTo *uuid.UUID
	err = tx.QueryRow(ctx, `SELECT status, assigned_to FROM tasks WHERE id = $1`, taskID).Scan(&status, &assignedTo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errNotFound
		}
		return err
	}
	if assignedTo != nil && *assignedTo != userID {
		return errForbiddenAssignee
	}
	return errNotOpen
}

// CompleteTx marks the task completed and stamps the completion time.
// Called only by the review workflow on approval.
func (r *Repository) CompleteTx(ctx context.Context, tx pgx.Tx, taskID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE tasks SET status = $2, completed_at = now() WHERE id = $1
	`, taskID, models.TaskStatusCompleted)
	return err
}

// ReopenTx resets the task to open and clears the assignee.
// Called only by the review workflow on rejection.
func (r *Repository) ReopenTx(ctx context.Context, tx pgx.Tx, taskID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE tasks SET status = $2, assigned_to = NULL WHERE id = $1
	`, taskID, models.TaskStatusOpen)
	return err
}

// List returns all tasks ordered by status ascending, newest-first within
// a status group. Presentational ordering, not a queue.
func (r *Repository) List(ctx context.Context) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks ORDER BY status ASC, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.RewardCents, &t.Tags, &t.CreatedBy, &t.Status, &t.AssignedTo, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
