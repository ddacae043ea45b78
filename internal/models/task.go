package models

import (
	"time"

	"github.com/google/uuid"
)

// Task status enum. A task only ever moves
// open -> assigned -> submitted -> {completed | open}.
const (
	TaskStatusOpen      = "open"
	TaskStatusAssigned  = "assigned"
	TaskStatusSubmitted = "submitted"
	TaskStatusCompleted = "completed"
)

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	RewardCents int64      `json:"reward_cents"`
	Tags        []string   `json:"tags"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	Status      string     `json:"status"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
