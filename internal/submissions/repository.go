package submissions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/internal/models"
)

var errNotFound = errors.New("submission not found")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// CreateTx inserts the submission and its file descriptors.
// Call within the submission transaction.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, s *models.Submission) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO submissions (id, task_id, user_id, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, s.ID, s.TaskID, s.UserID, s.Message, s.Status).Scan(&s.CreatedAt)
	if err != nil {
		return err
	}
	for i := range s.Files {
		f := &s.Files[i]
		f.SubmissionID = s.ID
		_, err := tx.Exec(ctx, `
			INSERT INTO submission_files (id, submission_id, display_name, storage_name, path)
			VALUES ($1, $2, $3, $4, $5)
		`, f.ID, f.SubmissionID, f.DisplayName, f.StorageName, f.Path)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var s models.Submission
	err := r.pool.QueryRow(ctx, `
		SELECT id, task_id, user_id, message, status, admin_note, created_at
		FROM submissions WHERE id = $1
	`, id).Scan(&s.ID, &s.TaskID, &s.UserID, &s.Message, &s.Status, &s.AdminNote, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, err
	}
	files, err := r.filesFor(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Files = files
	return &s, nil
}

// MarkReviewedTx sets the terminal status and note, but only if the
// submission is still pending. Returns false when another review got
// there first — the caller must treat that as already-reviewed.
func (r *Repository) MarkReviewedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, note *string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE submissions SET status = $2, admin_note = $3
		WHERE id = $1 AND status = $4
	`, id, status, note, models.SubmissionStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListForUser returns the user's submissions newest-first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Submission, error) {
	return r.list(ctx, `
		SELECT id, task_id, user_id, message, status, admin_note, created_at
		FROM submissions WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
}

// ListForTask returns the task's submissions newest-first.
func (r *Repository) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*models.Submission, error) {
	return r.list(ctx, `
		SELECT id, task_id, user_id, message, status, admin_note, created_at
		FROM submissions WHERE task_id = $1 ORDER BY created_at DESC
	`, taskID)
}

// ListForAdmin returns all submissions newest-first, joined with the
// submitter's handle and the task title for display.
func (r *Repository) ListForAdmin(ctx context.Context) ([]*models.AdminSubmission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.task_id, s.user_id, s.message, s.status, s.admin_note, s.created_at,
			u.username, t.title
		FROM submissions s
		JOIN users u ON u.id = s.user_id
		JOIN tasks t ON t.id = s.task_id
		ORDER BY s.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.AdminSubmission
	for rows.Next() {
		var a models.AdminSubmission
		err := rows.Scan(&a.ID, &a.TaskID, &a.UserID, &a.Message, &a.Status, &a.AdminNote, &a.CreatedAt,
			&a.Username, &a.TaskTitle)
		if err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, a := range list {
		files, err := r.filesFor(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		a.Files = files
	}
	return list, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*models.Submission, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Submission
	for rows.Next() {
		var s models.Submission
		err := rows.Scan(&s.ID, &s.TaskID, &s.UserID, &s.Message, &s.Status, &s.AdminNote, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range list {
		files, err := r.filesFor(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		s.Files = files
	}
	return list, nil
}

func (r *Repository) filesFor(ctx context.Context, submissionID uuid.UUID) ([]models.SubmissionFile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, submission_id, display_name, storage_name, path
		FROM submission_files WHERE submission_id = $1
	`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	files := []models.SubmissionFile{}
	for rows.Next() {
		var f models.SubmissionFile
		if err := rows.Scan(&f.ID, &f.SubmissionID, &f.DisplayName, &f.StorageName, &f.Path); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
