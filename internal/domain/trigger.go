package domain

import (
	"fmt"
	"time"
)

// TaskTemplate describes one task a trigger spawns when it fires.
type TaskTemplate struct {
	ID               string
	TriggerID        string
	Name             string
	Description      string
	DueInDays        int
	IsUrgent         bool
	RequiresApproval bool
	Position         int
}

// Trigger maps a case topic / event type / stage combination to a case role
// and an ordered list of task templates. Triggers are configuration: they are
// validated when saved, never at match time.
type Trigger struct {
	ID        string
	Topic     CaseTopic
	EventType CaseEventType
	// EventStage is required when EventType is STAGE_CHANGED and ignored
	// otherwise.
	EventStage *CaseStage
	Role       CaseRole
	Templates  []TaskTemplate
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate enforces trigger configuration invariants at save time.
func (t *Trigger) Validate() error {
	if !t.EventType.IsValid() {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidTrigger, t.EventType)
	}
	if !t.Role.IsValid() {
		return fmt.Errorf("%w: unknown assignment role %q", ErrInvalidTrigger, t.Role)
	}
	if t.EventType == CaseEventStageChanged && t.EventStage == nil {
		return fmt.Errorf("%w: stage-changed triggers require an event stage", ErrInvalidTrigger)
	}
	if len(t.Templates) == 0 {
		return fmt.Errorf("%w: trigger has no task templates", ErrInvalidTrigger)
	}
	for _, tpl := range t.Templates {
		if tpl.Name == "" {
			return fmt.Errorf("%w: task template requires a name", ErrInvalidTrigger)
		}
		if tpl.DueInDays < 0 {
			return fmt.Errorf("%w: template %q has negative due-in days", ErrInvalidTrigger, tpl.Name)
		}
	}
	return nil
}

// Matches reports whether the trigger fires for the given event. Assumes the
// trigger passed Validate when it was saved.
func (t *Trigger) Matches(event CaseEvent) bool {
	if !t.IsActive {
		return false
	}
	if t.EventType != event.Type {
		return false
	}
	if t.Topic != TopicAny && t.Topic != event.Case.Topic {
		return false
	}
	if t.EventType == CaseEventStageChanged {
		if event.NextStage == nil || t.EventStage == nil || *t.EventStage != *event.NextStage {
			return false
		}
	}
	return true
}
