package memory

import (
	"context"
	"sync"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// TaskEventStore is an in-memory append-only task event store.
type TaskEventStore struct {
	mu     sync.RWMutex
	events map[string][]*domain.TaskEvent
}

// NewTaskEventStore creates an empty TaskEventStore.
func NewTaskEventStore() *TaskEventStore {
	return &TaskEventStore{events: make(map[string][]*domain.TaskEvent)}
}

// Append stores an event.
func (s *TaskEventStore) Append(_ context.Context, event *domain.TaskEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *event
	s.events[event.TaskID] = append(s.events[event.TaskID], &c)
	return nil
}

// ListByTask returns a task's events in append order.
func (s *TaskEventStore) ListByTask(_ context.Context, taskID string) ([]*domain.TaskEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.TaskEvent, 0, len(s.events[taskID]))
	for _, e := range s.events[taskID] {
		c := *e
		out = append(out, &c)
	}
	return out, nil
}

// TaskCommentStore is an in-memory task comment store.
type TaskCommentStore struct {
	mu       sync.RWMutex
	comments map[string][]*domain.TaskComment
}

// NewTaskCommentStore creates an empty TaskCommentStore.
func NewTaskCommentStore() *TaskCommentStore {
	return &TaskCommentStore{comments: make(map[string][]*domain.TaskComment)}
}

// Append stores a comment.
func (s *TaskCommentStore) Append(_ context.Context, comment *domain.TaskComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *comment
	s.comments[comment.TaskID] = append(s.comments[comment.TaskID], &c)
	return nil
}

// ListByTask returns a task's comments in append order.
func (s *TaskCommentStore) ListByTask(_ context.Context, taskID string) ([]*domain.TaskComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.TaskComment, 0, len(s.comments[taskID]))
	for _, c := range s.comments[taskID] {
		cc := *c
		out = append(out, &cc)
	}
	return out, nil
}

// CaseEventStore is an in-memory case event journal.
type CaseEventStore struct {
	mu     sync.RWMutex
	events map[string][]*domain.CaseEvent
}

// NewCaseEventStore creates an empty CaseEventStore.
func NewCaseEventStore() *CaseEventStore {
	return &CaseEventStore{events: make(map[string][]*domain.CaseEvent)}
}

// Append journals a case event.
func (s *CaseEventStore) Append(_ context.Context, event *domain.CaseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *event
	s.events[event.CaseID] = append(s.events[event.CaseID], &c)
	return nil
}

// ListByCase returns a case's journal in append order.
func (s *CaseEventStore) ListByCase(_ context.Context, caseID string) ([]*domain.CaseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.CaseEvent, 0, len(s.events[caseID]))
	for _, e := range s.events[caseID] {
		c := *e
		out = append(out, &c)
	}
	return out, nil
}
