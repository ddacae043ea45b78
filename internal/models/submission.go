package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission status enum. pending is the only reviewable state.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Review actions accepted by the admin review endpoint.
const (
	ReviewActionApprove = "approve"
	ReviewActionReject  = "reject"
)

type Submission struct {
	ID        uuid.UUID        `json:"id"`
	TaskID    uuid.UUID        `json:"task_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Message   string           `json:"message"`
	Status    string           `json:"status"`
	AdminNote *string          `json:"admin_note,omitempty"`
	Files     []SubmissionFile `json:"files"`
	CreatedAt time.Time        `json:"created_at"`
}

// SubmissionFile describes one stored proof file: the name the user
// uploaded it under, the name it is stored under, and the path it can
// be retrieved from.
type SubmissionFile struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	DisplayName  string    `json:"display_name"`
	StorageName  string    `json:"storage_name"`
	Path         string    `json:"path"`
}

// AdminSubmission is the joined view served to reviewers.
type AdminSubmission struct {
	Submission
	Username  string `json:"username"`
	TaskTitle string `json:"task_title"`
}
