// Package lifecycle applies case events to the task store: it spawns tasks
// from matched triggers and keeps existing tasks consistent as the people
// responsible for a case change.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AnikaLegal/caseflow/internal/detector"
	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/metrics"
	"github.com/AnikaLegal/caseflow/internal/notify"
	"github.com/AnikaLegal/caseflow/internal/store"
	"github.com/AnikaLegal/caseflow/internal/trigger"
)

// Controller is the task lifecycle state machine. All effects of a single
// case event are applied inside one transaction, so redelivery after a crash
// is either a no-op or a full re-apply.
type Controller struct {
	txr      store.TxRunner
	tasks    store.TaskStore
	comments store.TaskCommentStore
	journal  store.CaseEventStore
	users    store.UserStore
	matcher  *trigger.Matcher
	notifier notify.Notifier
	metrics  *metrics.Metrics
}

// NewController creates a Controller.
func NewController(
	txr store.TxRunner,
	tasks store.TaskStore,
	comments store.TaskCommentStore,
	journal store.CaseEventStore,
	users store.UserStore,
	matcher *trigger.Matcher,
	notifier notify.Notifier,
	m *metrics.Metrics,
) *Controller {
	return &Controller{
		txr:      txr,
		tasks:    tasks,
		comments: comments,
		journal:  journal,
		users:    users,
		matcher:  matcher,
		notifier: notifier,
		metrics:  m,
	}
}

// HandleCaseChange diffs the two snapshots and applies every resulting event
// in order. A nil prev means the case was just created.
func (c *Controller) HandleCaseChange(ctx context.Context, prev *domain.CaseSnapshot, next domain.CaseSnapshot) error {
	events := detector.Detect(prev, next, time.Now())
	for i := range events {
		if err := c.Apply(ctx, events[i]); err != nil {
			return err
		}
	}
	return nil
}

// Apply processes one case event: journal it, maintain existing tasks, then
// create tasks for any matched triggers.
func (c *Controller) Apply(ctx context.Context, event domain.CaseEvent) error {
	if !event.Type.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidEventType, event.Type)
	}
	return c.txr.InTx(ctx, func(ctx context.Context) error {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if err := c.journal.Append(ctx, &event); err != nil {
			return fmt.Errorf("journal case event: %w", err)
		}
		c.metrics.CaseEventsDetected.WithLabelValues(string(event.Type)).Inc()

		if role := event.Type.Role(); role != "" {
			if err := c.maintain(ctx, event, role); err != nil {
				return err
			}
		}
		if event.Type == domain.CaseEventOpenChanged && event.NextOpen != nil && !*event.NextOpen {
			if err := c.closeCaseTasks(ctx, event.CaseID); err != nil {
				return err
			}
		}
		return c.createFromTriggers(ctx, event)
	})
}

// maintain performs the ownership transitions for a role-change event:
// revert and suspend on removal, resume on addition, reassign on handover.
func (c *Controller) maintain(ctx context.Context, event domain.CaseEvent, role domain.CaseRole) error {
	switch {
	case event.IsRemoval():
		return c.handleRemoval(ctx, event, role)
	case event.IsAddition():
		return c.handleAddition(ctx, event, role)
	case event.IsHandover():
		return c.handleHandover(ctx, event)
	default:
		return nil
	}
}

func (c *Controller) handleRemoval(ctx context.Context, event domain.CaseEvent, role domain.CaseRole) error {
	removed := *event.PrevUser
	removedName, err := c.userName(ctx, removed)
	if err != nil {
		return err
	}

	open, err := c.tasks.ListOpenByCase(ctx, event.CaseID)
	if err != nil {
		return fmt.Errorf("list open tasks: %w", err)
	}
	for _, task := range open {
		switch {
		case task.IsOwnedBy(removed):
			task.Suspend(role)
			if err := c.saveWithNote(ctx, task, suspendNote(removedName)); err != nil {
				return err
			}
			c.metrics.LifecycleActions.WithLabelValues("suspend").Inc()
		case task.IsAssignedTo(removed):
			// Delegate lost, not the owner: hand the task back.
			task.AssignedToID = task.OwnerID
			if err := c.saveWithNote(ctx, task, revertNote(removedName)); err != nil {
				return err
			}
			c.metrics.LifecycleActions.WithLabelValues("revert").Inc()
		}
	}
	return nil
}

func (c *Controller) handleAddition(ctx context.Context, event domain.CaseEvent, role domain.CaseRole) error {
	added := *event.NextUser
	addedName, err := c.userName(ctx, added)
	if err != nil {
		return err
	}

	suspended, err := c.tasks.ListSuspendedByCase(ctx, event.CaseID)
	if err != nil {
		return fmt.Errorf("list suspended tasks: %w", err)
	}
	for _, task := range suspended {
		if task.PrevOwnerRole == nil || *task.PrevOwnerRole != role {
			continue
		}
		task.Resume(added)
		if err := c.saveWithNote(ctx, task, resumeNote(addedName, role)); err != nil {
			return err
		}
		c.metrics.LifecycleActions.WithLabelValues("resume").Inc()
	}
	return nil
}

func (c *Controller) handleHandover(ctx context.Context, event domain.CaseEvent) error {
	prev, next := *event.PrevUser, *event.NextUser

	// Outgoing user still active in another role on the case: ownership by
	// role cannot be disambiguated, so skip reassignment entirely.
	if event.Case.HasUser(prev) {
		slog.Info("skipping reassignment, outgoing user still active on case",
			"case_id", event.CaseID, "user_id", prev)
		c.metrics.LifecycleActions.WithLabelValues("ambiguous_skip").Inc()
		return nil
	}

	prevName, err := c.userName(ctx, prev)
	if err != nil {
		return err
	}
	nextName, err := c.userName(ctx, next)
	if err != nil {
		return err
	}

	open, err := c.tasks.ListOpenByCase(ctx, event.CaseID)
	if err != nil {
		return fmt.Errorf("list open tasks: %w", err)
	}
	for _, task := range open {
		touched := false
		if task.IsOwnedBy(prev) {
			task.OwnerID = &next
			touched = true
		}
		if task.IsAssignedTo(prev) {
			task.AssignedToID = &next
			touched = true
		}
		if !touched {
			continue
		}
		if err := c.saveWithNote(ctx, task, reassignNote(prevName, nextName)); err != nil {
			return err
		}
		c.metrics.LifecycleActions.WithLabelValues("reassign").Inc()
	}
	return nil
}

// closeCaseTasks closes every task still open for the case when the case
// itself closes. Unfinished tasks end as NOT_DONE; the synthesizer reports
// the resulting status change as a cancellation.
func (c *Controller) closeCaseTasks(ctx context.Context, caseID string) error {
	all, err := c.tasks.ListByCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("list case tasks: %w", err)
	}
	now := time.Now()
	for _, task := range all {
		if !task.IsOpen {
			continue
		}
		if !task.Status.IsTerminal() {
			task.Status = domain.TaskStatusNotDone
		}
		task.Close(now)
		if err := c.saveWithNote(ctx, task, closureNote()); err != nil {
			return err
		}
		c.metrics.LifecycleActions.WithLabelValues("close").Inc()
	}
	return nil
}

// createFromTriggers spawns tasks for every template of every matched
// trigger. Creation is idempotent on the (case, template, owner) triple, so
// duplicate event delivery is absorbed here.
func (c *Controller) createFromTriggers(ctx context.Context, event domain.CaseEvent) error {
	matches, err := c.matcher.Match(ctx, event)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, match := range matches {
		for i := range match.Trigger.Templates {
			tpl := &match.Trigger.Templates[i]
			if err := c.createFromTemplate(ctx, event, match, tpl, now); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Controller) createFromTemplate(
	ctx context.Context,
	event domain.CaseEvent,
	match trigger.Match,
	tpl *domain.TaskTemplate,
	now time.Time,
) error {
	_, err := c.tasks.FindByTriple(ctx, event.CaseID, tpl.ID, match.AssigneeID)
	if err == nil {
		return nil // already created by an earlier delivery
	}
	if !errors.Is(err, domain.ErrTaskNotFound) {
		return fmt.Errorf("check existing task: %w", err)
	}

	owner := match.AssigneeID
	task := &domain.Task{
		ID:           uuid.NewString(),
		CaseID:       event.CaseID,
		TemplateID:   &tpl.ID,
		Type:         tpl.Name,
		Name:         tpl.Name,
		Description:  tpl.Description,
		Status:       domain.TaskStatusNotStarted,
		OwnerID:      &owner,
		AssignedToID: &owner,
		IsOpen:       true,
		IsUrgent:     tpl.IsUrgent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if tpl.DueInDays > 0 {
		due := now.AddDate(0, 0, tpl.DueInDays)
		task.DueAt = &due
	}

	if err := c.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, domain.ErrDuplicateTask) {
			// Lost a race with a concurrent worker; the invariant held.
			slog.Debug("duplicate task creation absorbed",
				"case_id", event.CaseID, "template_id", tpl.ID)
			return nil
		}
		return fmt.Errorf("create task: %w", err)
	}
	c.metrics.TasksCreated.Inc()

	if match.Trigger.Role == domain.RoleCoordinator {
		if err := c.notifier.TaskAssigned(ctx, owner, task.ID, event.Type); err != nil {
			// Notification delivery is best-effort; never fail the event.
			slog.Error("task assignment notification failed",
				"task_id", task.ID, "error", err)
		}
	}
	return nil
}

// saveWithNote persists the task mutation and appends the explanatory note.
func (c *Controller) saveWithNote(ctx context.Context, task *domain.Task, note string) error {
	if !task.CheckSuspension() {
		return fmt.Errorf("%w: task %s", domain.ErrSuspensionInvalid, task.ID)
	}
	task.UpdatedAt = time.Now()
	if err := c.tasks.Update(ctx, task); err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}
	comment := &domain.TaskComment{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		Text:      note,
		CreatedAt: time.Now(),
	}
	if err := c.comments.Append(ctx, comment); err != nil {
		return fmt.Errorf("append task note: %w", err)
	}
	return nil
}

// userName renders a user for notes, falling back to the raw id when the
// mirror has no record.
func (c *Controller) userName(ctx context.Context, userID string) (string, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return userID, nil
		}
		return "", fmt.Errorf("look up user %s: %w", userID, err)
	}
	if user.FullName == "" {
		return user.ID, nil
	}
	return user.FullName, nil
}
