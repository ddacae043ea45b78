package tasks

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/backend/internal/models"
)

// ErrNotFound is returned when the task does not exist.
var ErrNotFound = errNotFound

// ErrNotOpen is returned when claiming a task that is not open.
var ErrNotOpen = errNotOpen

// ErrForbiddenAssignee is returned when acting on a task assigned to someone else.
var ErrForbiddenAssignee = errForbiddenAssignee

// Store is the task persistence interface used by the service.
// Implemented by *Repository.
type Store interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Take(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
}

type Service interface {
	Create(ctx context.Context, title, description string, rewardCents int64, tags []string, creatorID uuid.UUID) (*models.Task, error)
	Take(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

func (s *service) Create(ctx context.Context, title, description string, rewardCents int64, tags []string, creatorID uuid.UUID) (*models.Task, error) {
	if tags == nil {
		tags = []string{}
	}
	t := &models.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		RewardCents: rewardCents,
		Tags:        tags,
		CreatedBy:   creatorID,
		Status:      models.TaskStatusOpen,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Take(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	return s.store.Take(ctx, taskID, userID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.store.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*models.Task, error) {
	return s.store.List(ctx)
}
