package domain

import "time"

// EntityType names the kinds of entities change records are emitted for.
type EntityType string

const (
	EntityTask        EntityType = "task"
	EntityTaskRequest EntityType = "task_request"
)

// FieldChange is an (old, new) pair for a single field. Nil means the field
// was unset on that side of the change.
type FieldChange struct {
	Old *string
	New *string
}

// Metadata keys recognised on change records.
const (
	// MetaCaseClosed marks a status change as driven by the case closing,
	// which the synthesizer reports as a cancellation rather than a normal
	// status change.
	MetaCaseClosed = "case_closed"
)

// ChangeRecord is one raw field-level change to a task or task request, as
// reported by the persistence layer. The audit synthesizer turns these into
// semantic task events.
type ChangeRecord struct {
	ID         string
	EntityType EntityType
	EntityID   string
	Fields     map[string]FieldChange
	ActorID    *string
	Comment    string
	Metadata   map[string]string
	OccurredAt time.Time
}

// Changed returns the field change for name, and whether it is present.
func (r ChangeRecord) Changed(name string) (FieldChange, bool) {
	fc, ok := r.Fields[name]
	return fc, ok
}
