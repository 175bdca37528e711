// Package detector turns before/after case snapshots into typed case events.
// It is a pure diff: it decides nothing about what happens downstream.
package detector

import (
	"time"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// Detect compares two case snapshots and returns one event per changed
// tracked field. A nil prev means the case was just created, which always
// yields a single CREATED event regardless of which fields are set.
//
// Events are returned in a fixed order: role fields (paralegal, lawyer)
// before stage and open-flag, so downstream reassignment logic runs before
// other reactions. Event ids are left empty for the journal to assign.
func Detect(prev *domain.CaseSnapshot, next domain.CaseSnapshot, now time.Time) []domain.CaseEvent {
	if prev == nil {
		return []domain.CaseEvent{{
			CaseID:    next.ID,
			Type:      domain.CaseEventCreated,
			CreatedAt: now,
			Case:      next,
		}}
	}

	var events []domain.CaseEvent

	if !equalUser(prev.ParalegalID, next.ParalegalID) {
		events = append(events, domain.CaseEvent{
			CaseID:    next.ID,
			Type:      domain.CaseEventParalegalChanged,
			PrevUser:  prev.ParalegalID,
			NextUser:  next.ParalegalID,
			CreatedAt: now,
			Case:      next,
		})
	}
	if !equalUser(prev.LawyerID, next.LawyerID) {
		events = append(events, domain.CaseEvent{
			CaseID:    next.ID,
			Type:      domain.CaseEventLawyerChanged,
			PrevUser:  prev.LawyerID,
			NextUser:  next.LawyerID,
			CreatedAt: now,
			Case:      next,
		})
	}
	if prev.Stage != next.Stage {
		prevStage, nextStage := prev.Stage, next.Stage
		events = append(events, domain.CaseEvent{
			CaseID:    next.ID,
			Type:      domain.CaseEventStageChanged,
			PrevStage: &prevStage,
			NextStage: &nextStage,
			CreatedAt: now,
			Case:      next,
		})
	}
	if prev.IsOpen != next.IsOpen {
		prevOpen, nextOpen := prev.IsOpen, next.IsOpen
		events = append(events, domain.CaseEvent{
			CaseID:    next.ID,
			Type:      domain.CaseEventOpenChanged,
			PrevOpen:  &prevOpen,
			NextOpen:  &nextOpen,
			CreatedAt: now,
			Case:      next,
		})
	}

	return events
}

func equalUser(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
