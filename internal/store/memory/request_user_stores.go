package memory

import (
	"context"
	"sync"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// TaskRequestStore is an in-memory task request store.
type TaskRequestStore struct {
	mu       sync.RWMutex
	requests map[string]*domain.TaskRequest
}

// NewTaskRequestStore creates an empty TaskRequestStore.
func NewTaskRequestStore() *TaskRequestStore {
	return &TaskRequestStore{requests: make(map[string]*domain.TaskRequest)}
}

func cloneRequest(r *domain.TaskRequest) *domain.TaskRequest {
	c := *r
	return &c
}

// GetByID retrieves a request by id.
func (s *TaskRequestStore) GetByID(_ context.Context, requestID string) (*domain.TaskRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, domain.ErrTaskRequestNotFound
	}
	return cloneRequest(r), nil
}

// Create stores a request.
func (s *TaskRequestStore) Create(_ context.Context, request *domain.TaskRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[request.ID] = cloneRequest(request)
	return nil
}

// Update replaces a stored request.
func (s *TaskRequestStore) Update(_ context.Context, request *domain.TaskRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[request.ID]; !ok {
		return domain.ErrTaskRequestNotFound
	}
	s.requests[request.ID] = cloneRequest(request)
	return nil
}

// UserStore is an in-memory mirror of user accounts.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*domain.User)}
}

// Put adds or replaces a user. Test fixture helper.
func (s *UserStore) Put(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *user
	s.users[user.ID] = &c
}

// GetByID retrieves a user by id.
func (s *UserStore) GetByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

// IsLawyer reports lawyer-group membership, false for unknown users.
func (s *UserStore) IsLawyer(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	return u.IsLawyer, nil
}
