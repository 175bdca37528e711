// Package audit diffs raw change records for tasks and task requests and
// emits semantic, human-readable task events. It is a separate observational
// pipeline from the lifecycle controller: it also covers changes the
// controller did not cause, such as a coordinator reassigning a task by hand.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/metrics"
	"github.com/AnikaLegal/caseflow/internal/store"
)

// Field names recognised on task change records.
const (
	fieldAssignedTo = "assigned_to"
	fieldStatus     = "status"
)

// Synthesizer turns change records into task events.
type Synthesizer struct {
	txr      store.TxRunner
	tasks    store.TaskStore
	events   store.TaskEventStore
	requests store.TaskRequestStore
	users    store.UserStore
	metrics  *metrics.Metrics
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(
	txr store.TxRunner,
	tasks store.TaskStore,
	events store.TaskEventStore,
	requests store.TaskRequestStore,
	users store.UserStore,
	m *metrics.Metrics,
) *Synthesizer {
	return &Synthesizer{txr: txr, tasks: tasks, events: events, requests: requests, users: users, metrics: m}
}

// Process synthesizes the task events implied by one change record. All
// events for a record are appended in a single transaction. Records for
// unknown entities or malformed fields are logged and skipped: only storage
// failures propagate.
func (s *Synthesizer) Process(ctx context.Context, rec domain.ChangeRecord) error {
	return s.txr.InTx(ctx, func(ctx context.Context) error {
		switch rec.EntityType {
		case domain.EntityTask:
			return s.processTask(ctx, rec)
		case domain.EntityTaskRequest:
			return s.processRequest(ctx, rec)
		default:
			slog.Warn("skipping change record for unknown entity type",
				"entity_type", string(rec.EntityType), "entity_id", rec.EntityID)
			return nil
		}
	})
}

func (s *Synthesizer) processTask(ctx context.Context, rec domain.ChangeRecord) error {
	assignment, hasAssignment := rec.Changed(fieldAssignedTo)
	status, hasStatus := rec.Changed(fieldStatus)
	if !hasAssignment && !hasStatus {
		return nil
	}

	if _, err := s.tasks.GetByID(ctx, rec.EntityID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			slog.Warn("change record references unknown task", "task_id", rec.EntityID)
			return nil
		}
		return fmt.Errorf("load task %s: %w", rec.EntityID, err)
	}

	if hasAssignment {
		if err := s.emitAssignmentChange(ctx, rec, assignment); err != nil {
			return err
		}
	}
	if hasStatus {
		if err := s.emitStatusChange(ctx, rec, status); err != nil {
			return err
		}
	}
	return nil
}

// emitAssignmentChange classifies an assigned_to diff the same way the
// lifecycle controller speaks: cleared means suspend, filled means resume,
// swapped means reassign.
func (s *Synthesizer) emitAssignmentChange(ctx context.Context, rec domain.ChangeRecord, fc domain.FieldChange) error {
	switch {
	case fc.Old != nil && fc.New == nil:
		return s.emit(ctx, rec.EntityID, rec, domain.TaskEventSuspended, map[string]string{
			domain.DataFromUser: *fc.Old,
		}, "")
	case fc.Old == nil && fc.New != nil:
		return s.emit(ctx, rec.EntityID, rec, domain.TaskEventResumed, map[string]string{
			domain.DataToUser: *fc.New,
		}, "")
	case fc.Old != nil && fc.New != nil && *fc.Old != *fc.New:
		return s.emit(ctx, rec.EntityID, rec, domain.TaskEventReassigned, map[string]string{
			domain.DataFromUser: *fc.Old,
			domain.DataToUser:   *fc.New,
		}, "")
	default:
		return nil
	}
}

func (s *Synthesizer) emitStatusChange(ctx context.Context, rec domain.ChangeRecord, fc domain.FieldChange) error {
	data := map[string]string{}
	if fc.Old != nil {
		data[domain.DataOldStatus] = *fc.Old
	}
	if fc.New != nil {
		data[domain.DataNewStatus] = *fc.New
	}
	if rec.Metadata[domain.MetaCaseClosed] == "true" {
		return s.emit(ctx, rec.EntityID, rec, domain.TaskEventCancelled, data, rec.Comment)
	}
	return s.emit(ctx, rec.EntityID, rec, domain.TaskEventStatusChanged, data, rec.Comment)
}

func (s *Synthesizer) processRequest(ctx context.Context, rec domain.ChangeRecord) error {
	fc, ok := rec.Changed(fieldStatus)
	if !ok {
		return nil
	}

	request, err := s.requests.GetByID(ctx, rec.EntityID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskRequestNotFound) {
			slog.Warn("change record references unknown task request",
				"request_id", rec.EntityID)
			return nil
		}
		return fmt.Errorf("load task request %s: %w", rec.EntityID, err)
	}
	if request.Type != domain.TaskRequestApproval {
		return nil
	}

	data := map[string]string{domain.DataRequestID: request.ID}

	switch {
	case fc.Old == nil && fc.New != nil && domain.TaskRequestStatus(*fc.New) == domain.TaskRequestPending:
		// Request creation: the requesting task shows that approval is
		// being sought.
		return s.emit(ctx, request.RequestTaskID, rec, domain.TaskEventApprovalRequest, data, rec.Comment)

	case fc.New != nil && domain.TaskRequestStatus(*fc.New) == domain.TaskRequestDone:
		if request.IsApproved == nil {
			slog.Warn("approval request completed without an outcome",
				"request_id", request.ID)
			return nil
		}
		outcome := domain.TaskEventApprovalDeclined
		if *request.IsApproved {
			outcome = domain.TaskEventApprovalGranted
		}
		// Both sides of the approval show the outcome: the target task and
		// a clone on the requesting task, identical data and note, distinct
		// ids.
		if err := s.emit(ctx, request.TaskID, rec, outcome, data, rec.Comment); err != nil {
			return err
		}
		return s.emit(ctx, request.RequestTaskID, rec, outcome, data, rec.Comment)

	default:
		return nil
	}
}

// emit appends one task event, rendering its description best-effort.
func (s *Synthesizer) emit(
	ctx context.Context,
	taskID string,
	rec domain.ChangeRecord,
	eventType domain.TaskEventType,
	data map[string]string,
	note string,
) error {
	description, err := describe(eventType, data, s.lookupNames(ctx, data))
	if err != nil {
		// The structured data is always retained; a failed render only
		// costs the pretty text.
		slog.Error("task event description rendering failed",
			"task_id", taskID, "type", string(eventType), "error", err)
		description = ""
	}

	event := &domain.TaskEvent{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		ActorID:     rec.ActorID,
		Type:        eventType,
		Data:        data,
		Note:        note,
		Description: description,
		CreatedAt:   rec.OccurredAt,
	}
	if err := s.events.Append(ctx, event); err != nil {
		return fmt.Errorf("append task event: %w", err)
	}
	s.metrics.TaskEventsSynthesized.WithLabelValues(string(eventType)).Inc()
	return nil
}

// lookupNames resolves display names for any user ids present in the data
// payload. Lookup failures fall back to raw ids rather than failing the
// pipeline.
func (s *Synthesizer) lookupNames(ctx context.Context, data map[string]string) map[string]string {
	names := make(map[string]string)
	for _, key := range []string{domain.DataFromUser, domain.DataToUser} {
		id, ok := data[key]
		if !ok || id == "" {
			continue
		}
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		names[id] = user.FullName
	}
	return names
}
