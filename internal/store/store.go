// Package store defines the persistence interfaces the pipeline writes
// through. Postgres implementations live in internal/repository, in-memory
// implementations in internal/store/memory.
package store

import (
	"context"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// TxRunner executes fn inside a single transaction. Everything an event does
// runs through one TxRunner call so a retry after a crash is either a no-op
// or a full re-apply.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TaskStore persists tasks.
type TaskStore interface {
	GetByID(ctx context.Context, taskID string) (*domain.Task, error)
	// ListOpenByCase returns open, non-suspended tasks for a case.
	ListOpenByCase(ctx context.Context, caseID string) ([]*domain.Task, error)
	// ListSuspendedByCase returns suspended tasks for a case.
	ListSuspendedByCase(ctx context.Context, caseID string) ([]*domain.Task, error)
	// ListByCase returns every task for a case, newest first.
	ListByCase(ctx context.Context, caseID string) ([]*domain.Task, error)
	// FindByTriple looks up the task for a (case, template, owner) triple.
	// Returns domain.ErrTaskNotFound when absent.
	FindByTriple(ctx context.Context, caseID, templateID, ownerID string) (*domain.Task, error)
	// Create inserts a task, enforcing the (case, template, owner)
	// uniqueness invariant. Returns domain.ErrDuplicateTask on conflict.
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
}

// TaskEventStore persists the append-only synthesized audit feed.
type TaskEventStore interface {
	Append(ctx context.Context, event *domain.TaskEvent) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.TaskEvent, error)
}

// TaskCommentStore persists free-text notes appended to tasks.
type TaskCommentStore interface {
	Append(ctx context.Context, comment *domain.TaskComment) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.TaskComment, error)
}

// TriggerStore persists trigger configuration. Save validates.
type TriggerStore interface {
	Save(ctx context.Context, trigger *domain.Trigger) error
	GetByID(ctx context.Context, triggerID string) (*domain.Trigger, error)
	// FindMatching returns active triggers for the event type whose topic is
	// the given topic or the wildcard. Stage filtering happens in the
	// matcher so the edge-case policy stays in one place.
	FindMatching(ctx context.Context, topic domain.CaseTopic, eventType domain.CaseEventType) ([]*domain.Trigger, error)
}

// TaskRequestStore persists approval requests between tasks.
type TaskRequestStore interface {
	GetByID(ctx context.Context, requestID string) (*domain.TaskRequest, error)
	Create(ctx context.Context, request *domain.TaskRequest) error
	Update(ctx context.Context, request *domain.TaskRequest) error
}

// CaseEventStore journals detected case events append-only.
type CaseEventStore interface {
	Append(ctx context.Context, event *domain.CaseEvent) error
	ListByCase(ctx context.Context, caseID string) ([]*domain.CaseEvent, error)
}

// UserStore reads mirrored user accounts.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	// IsLawyer reports lawyer-group membership, false for unknown users.
	IsLawyer(ctx context.Context, userID string) (bool, error)
}
