package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// TaskStore is an in-memory task store enforcing the same uniqueness
// invariant as the postgres schema.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

// NewTaskStore creates an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

// GetByID retrieves a task by id.
func (s *TaskStore) GetByID(_ context.Context, taskID string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

// ListOpenByCase returns open, non-suspended tasks for a case.
func (s *TaskStore) ListOpenByCase(_ context.Context, caseID string) ([]*domain.Task, error) {
	return s.list(func(t *domain.Task) bool {
		return t.CaseID == caseID && t.IsOpen && !t.IsSuspended
	}), nil
}

// ListSuspendedByCase returns suspended tasks for a case.
func (s *TaskStore) ListSuspendedByCase(_ context.Context, caseID string) ([]*domain.Task, error) {
	return s.list(func(t *domain.Task) bool {
		return t.CaseID == caseID && t.IsSuspended
	}), nil
}

// ListByCase returns every task for a case, newest first.
func (s *TaskStore) ListByCase(_ context.Context, caseID string) ([]*domain.Task, error) {
	return s.list(func(t *domain.Task) bool {
		return t.CaseID == caseID
	}), nil
}

// FindByTriple looks up the task for a (case, template, owner) triple.
func (s *TaskStore) FindByTriple(_ context.Context, caseID, templateID, ownerID string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.CaseID == caseID &&
			t.TemplateID != nil && *t.TemplateID == templateID &&
			t.OwnerID != nil && *t.OwnerID == ownerID {
			return cloneTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

// Create inserts a task, rejecting duplicates of the uniqueness triple.
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.TemplateID != nil && task.OwnerID != nil {
		for _, t := range s.tasks {
			if t.CaseID == task.CaseID &&
				t.TemplateID != nil && *t.TemplateID == *task.TemplateID &&
				t.OwnerID != nil && *t.OwnerID == *task.OwnerID {
				return domain.ErrDuplicateTask
			}
		}
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

// Update replaces a stored task.
func (s *TaskStore) Update(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

func (s *TaskStore) list(keep func(*domain.Task) bool) []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Task
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
