package domain

import "time"

// TaskStatus represents the working status of a task.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "NOT_STARTED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusNotDone    TaskStatus = "NOT_DONE"
)

// IsTerminal returns true if the status is terminal.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone || s == TaskStatusNotDone
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusDone, TaskStatusNotDone:
		return true
	default:
		return false
	}
}

// Task is a unit of work generated for a case. Tasks are owned by a
// role-holder and may be delegated to a different assignee. They are never
// deleted, only closed.
//
// Invariants:
//   - at most one task exists per (case, template, owner) triple
//   - IsSuspended == true exactly when OwnerID and AssignedToID are nil and
//     PrevOwnerRole is set
type Task struct {
	ID     string
	CaseID string
	// TemplateID is nil for ad-hoc tasks created outside trigger matching.
	TemplateID   *string
	Type         string
	Name         string
	Description  string
	Status       TaskStatus
	OwnerID      *string
	AssignedToID *string
	IsOpen       bool
	IsSuspended  bool
	// PrevOwnerRole is set only while suspended and records which case role
	// the task belongs to, so it can be matched when the role is re-filled.
	PrevOwnerRole *CaseRole
	IsUrgent      bool
	DueAt         *time.Time
	ClosedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Suspend clears ownership and records the role the task belonged to.
func (t *Task) Suspend(role CaseRole) {
	t.OwnerID = nil
	t.AssignedToID = nil
	t.PrevOwnerRole = &role
	t.IsSuspended = true
}

// Resume restores ownership to the user who re-filled the suspended role.
func (t *Task) Resume(userID string) {
	t.OwnerID = &userID
	t.AssignedToID = &userID
	t.PrevOwnerRole = nil
	t.IsSuspended = false
}

// Close marks the task closed at the given time without deleting it.
func (t *Task) Close(now time.Time) {
	t.IsOpen = false
	t.ClosedAt = &now
}

// IsOwnedBy checks if the task is owned by the given user.
func (t *Task) IsOwnedBy(userID string) bool {
	return t.OwnerID != nil && *t.OwnerID == userID
}

// IsAssignedTo checks if the task is assigned to the given user.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// CheckSuspension verifies the suspension invariant holds.
func (t *Task) CheckSuspension() bool {
	suspended := t.OwnerID == nil && t.AssignedToID == nil && t.PrevOwnerRole != nil
	return t.IsSuspended == suspended
}
