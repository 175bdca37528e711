package audit

import (
	"fmt"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// describe renders a human-readable description for a synthesized event.
// It is a pure function of the event type, its data payload, and the display
// names of involved users. Callers treat a failure as recoverable: the event
// is persisted either way, description left empty.
func describe(eventType domain.TaskEventType, data map[string]string, names map[string]string) (desc string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render %s description: %v", eventType, r)
		}
	}()

	name := func(key string) string {
		id := data[key]
		if display, ok := names[id]; ok && display != "" {
			return display
		}
		return id
	}

	switch eventType {
	case domain.TaskEventStatusChanged:
		return fmt.Sprintf("Status changed from %s to %s.", data[domain.DataOldStatus], data[domain.DataNewStatus]), nil
	case domain.TaskEventCancelled:
		return "Task cancelled because its case was closed.", nil
	case domain.TaskEventSuspended:
		return fmt.Sprintf("Task suspended after %s was removed from the case.", name(domain.DataFromUser)), nil
	case domain.TaskEventResumed:
		return fmt.Sprintf("Task resumed and assigned to %s.", name(domain.DataToUser)), nil
	case domain.TaskEventReassigned:
		return fmt.Sprintf("Task reassigned from %s to %s.", name(domain.DataFromUser), name(domain.DataToUser)), nil
	case domain.TaskEventApprovalRequest:
		return "Approval requested.", nil
	case domain.TaskEventApprovalGranted:
		return "Approval granted.", nil
	case domain.TaskEventApprovalDeclined:
		return "Approval declined.", nil
	default:
		return "", fmt.Errorf("no description template for event type %q", eventType)
	}
}
