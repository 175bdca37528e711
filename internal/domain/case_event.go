package domain

import "time"

// CaseEventType tags the kind of change a CaseEvent describes.
type CaseEventType string

const (
	CaseEventCreated          CaseEventType = "CREATED"
	CaseEventParalegalChanged CaseEventType = "PARALEGAL_CHANGED"
	CaseEventLawyerChanged    CaseEventType = "LAWYER_CHANGED"
	CaseEventStageChanged     CaseEventType = "STAGE_CHANGED"
	CaseEventOpenChanged      CaseEventType = "OPEN_CHANGED"
)

// IsValid checks if the event type is one of the allowed values.
func (t CaseEventType) IsValid() bool {
	switch t {
	case CaseEventCreated, CaseEventParalegalChanged, CaseEventLawyerChanged,
		CaseEventStageChanged, CaseEventOpenChanged:
		return true
	default:
		return false
	}
}

// Role returns the case role a role-change event refers to, or "" for
// non-role events.
func (t CaseEventType) Role() CaseRole {
	switch t {
	case CaseEventParalegalChanged:
		return RoleParalegal
	case CaseEventLawyerChanged:
		return RoleLawyer
	default:
		return ""
	}
}

// CaseEvent is an immutable record of one meaningful change to a case.
// A single case update may produce several events, each evaluated
// independently downstream. Only the fields relevant to the event type are
// set: prev/next users for role changes, prev/next stages for stage changes,
// prev/next open flags for open changes.
type CaseEvent struct {
	ID        string
	CaseID    string
	Type      CaseEventType
	PrevUser  *string
	NextUser  *string
	PrevStage *CaseStage
	NextStage *CaseStage
	PrevOpen  *bool
	NextOpen  *bool
	CreatedAt time.Time

	// Case is the post-mutation snapshot the event was detected against.
	// It travels with the event in-process so the matcher can resolve
	// roles; it is not persisted with the journal row.
	Case CaseSnapshot
}

// IsRemoval reports whether the event clears a role without a replacement.
// Removal events never spawn new tasks.
func (e CaseEvent) IsRemoval() bool {
	return e.Type.Role() != "" && e.PrevUser != nil && e.NextUser == nil
}

// IsAddition reports whether the event fills a previously empty role.
func (e CaseEvent) IsAddition() bool {
	return e.Type.Role() != "" && e.PrevUser == nil && e.NextUser != nil
}

// IsHandover reports whether the event replaces one concrete role-holder
// with a different one.
func (e CaseEvent) IsHandover() bool {
	return e.Type.Role() != "" && e.PrevUser != nil && e.NextUser != nil &&
		*e.PrevUser != *e.NextUser
}
