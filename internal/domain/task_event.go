package domain

import "time"

// TaskEventType represents the kind of semantic change a task event records.
type TaskEventType string

const (
	TaskEventStatusChanged    TaskEventType = "STATUS_CHANGED"
	TaskEventCancelled        TaskEventType = "CANCELLED"
	TaskEventSuspended        TaskEventType = "SUSPENDED"
	TaskEventResumed          TaskEventType = "RESUMED"
	TaskEventReassigned       TaskEventType = "REASSIGNED"
	TaskEventApprovalRequest  TaskEventType = "APPROVAL_REQUESTED"
	TaskEventApprovalGranted  TaskEventType = "APPROVAL_GRANTED"
	TaskEventApprovalDeclined TaskEventType = "APPROVAL_DECLINED"
)

// Payload keys used in TaskEvent.Data, per event type.
const (
	DataOldStatus = "old_status"
	DataNewStatus = "new_status"
	DataFromUser  = "from_user"
	DataToUser    = "to_user"
	DataRequestID = "request_id"
)

// TaskEvent is an immutable, append-only audit record describing a semantic
// change to a task, synthesized from raw change records. An approval outcome
// is duplicated onto both sides of the approval with identical data but
// distinct ids and task ids.
type TaskEvent struct {
	ID     string
	TaskID string
	// ActorID is nil for system-originated events.
	ActorID *string
	Type    TaskEventType
	// Data is the small structured payload specific to the event type. It
	// is always retained even when no description could be rendered.
	Data map[string]string
	// Note carries an optional free-text comment attached to the change.
	Note string
	// Description is the rendered human-readable summary; empty when
	// rendering failed.
	Description string
	CreatedAt   time.Time
}

// IsSystemEvent returns true if the event was created by the system.
func (e *TaskEvent) IsSystemEvent() bool {
	return e.ActorID == nil
}

// TaskComment is a free-text note appended to a task, kept separate from the
// synthesized event log. The lifecycle controller records the reason for each
// ownership transition here.
type TaskComment struct {
	ID        string
	TaskID    string
	AuthorID  *string
	Text      string
	CreatedAt time.Time
}

// ActivityKind discriminates the members of the task activity feed.
type ActivityKind string

const (
	ActivityComment ActivityKind = "comment"
	ActivityEvent   ActivityKind = "event"
)

// TaskActivity is one entry in a task's merged activity feed: either a
// comment or a synthesized event, discriminated explicitly by Kind.
type TaskActivity struct {
	Kind    ActivityKind
	Comment *TaskComment
	Event   *TaskEvent
}

// At returns the timestamp of the underlying entry.
func (a TaskActivity) At() time.Time {
	switch a.Kind {
	case ActivityComment:
		return a.Comment.CreatedAt
	case ActivityEvent:
		return a.Event.CreatedAt
	}
	return time.Time{}
}
