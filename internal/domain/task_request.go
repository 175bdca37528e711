package domain

import "time"

// TaskRequestType represents the kind of request one task raises against
// another.
type TaskRequestType string

const (
	TaskRequestApproval TaskRequestType = "APPROVAL"
)

// TaskRequestStatus tracks the progress of a request.
type TaskRequestStatus string

const (
	TaskRequestPending TaskRequestStatus = "PENDING"
	TaskRequestDone    TaskRequestStatus = "DONE"
)

// TaskRequest links a requesting task to a target task for an approval flow:
// the target task's work cannot complete until the request is resolved.
type TaskRequest struct {
	ID string
	// TaskID is the target task the request was raised about.
	TaskID string
	// RequestTaskID is the requesting task on which the approval is tracked.
	RequestTaskID string
	Type          TaskRequestType
	Status        TaskRequestStatus
	// IsApproved is set when the request reaches DONE.
	IsApproved    *bool
	Note          string
	RequestedByID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
