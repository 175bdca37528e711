package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// TriggerStore is an in-memory trigger configuration store.
type TriggerStore struct {
	mu       sync.RWMutex
	triggers map[string]*domain.Trigger
}

// NewTriggerStore creates an empty TriggerStore.
func NewTriggerStore() *TriggerStore {
	return &TriggerStore{triggers: make(map[string]*domain.Trigger)}
}

func cloneTrigger(t *domain.Trigger) *domain.Trigger {
	c := *t
	c.Templates = append([]domain.TaskTemplate(nil), t.Templates...)
	return &c
}

// Save validates and stores a trigger.
func (s *TriggerStore) Save(_ context.Context, trigger *domain.Trigger) error {
	if err := trigger.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers[trigger.ID] = cloneTrigger(trigger)
	return nil
}

// GetByID retrieves a trigger by id.
func (s *TriggerStore) GetByID(_ context.Context, triggerID string) (*domain.Trigger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.triggers[triggerID]
	if !ok {
		return nil, domain.ErrTriggerNotFound
	}
	return cloneTrigger(t), nil
}

// FindMatching returns active triggers for the event type whose topic is the
// given topic or the wildcard.
func (s *TriggerStore) FindMatching(_ context.Context, topic domain.CaseTopic, eventType domain.CaseEventType) ([]*domain.Trigger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Trigger
	for _, t := range s.triggers {
		if !t.IsActive || t.EventType != eventType {
			continue
		}
		if t.Topic != domain.TopicAny && t.Topic != topic {
			continue
		}
		out = append(out, cloneTrigger(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
