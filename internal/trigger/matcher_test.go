package trigger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/metrics"
	"github.com/AnikaLegal/caseflow/internal/store/memory"
	"github.com/AnikaLegal/caseflow/internal/trigger"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	triggers *memory.TriggerStore
	users    *memory.UserStore
	matcher  *trigger.Matcher
}

func newFixture(t *testing.T, coordinatorID string) *fixture {
	t.Helper()
	triggers := memory.NewTriggerStore()
	users := memory.NewUserStore()
	resolver := trigger.NewRoleResolver(coordinatorID, users)
	return &fixture{
		triggers: triggers,
		users:    users,
		matcher:  trigger.NewMatcher(triggers, resolver, metrics.NewForTest()),
	}
}

func (f *fixture) saveTrigger(t *testing.T, id string, topic domain.CaseTopic, eventType domain.CaseEventType, role domain.CaseRole) *domain.Trigger {
	t.Helper()
	trg := &domain.Trigger{
		ID:        id,
		Topic:     topic,
		EventType: eventType,
		Role:      role,
		IsActive:  true,
		Templates: []domain.TaskTemplate{
			{ID: id + "-tpl", TriggerID: id, Name: "Do the thing", DueInDays: 3},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.triggers.Save(context.Background(), trg))
	return trg
}

func createdEvent(c domain.CaseSnapshot) domain.CaseEvent {
	return domain.CaseEvent{
		ID:     "evt-1",
		CaseID: c.ID,
		Type:   domain.CaseEventCreated,
		Case:   c,
	}
}

func TestMatch_ResolvesParalegalFromSnapshot(t *testing.T) {
	f := newFixture(t, "")
	f.saveTrigger(t, "trg-1", domain.TopicRepairs, domain.CaseEventCreated, domain.RoleParalegal)

	event := createdEvent(domain.CaseSnapshot{
		ID: "case-1", Topic: domain.TopicRepairs, ParalegalID: strPtr("para-1"), IsOpen: true,
	})

	matches, err := f.matcher.Match(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "trg-1", matches[0].Trigger.ID)
	assert.Equal(t, "para-1", matches[0].AssigneeID)
}

func TestMatch_RemovalEventEvaluatesNothing(t *testing.T) {
	f := newFixture(t, "")
	f.saveTrigger(t, "trg-1", domain.TopicAny, domain.CaseEventParalegalChanged, domain.RoleParalegal)

	event := domain.CaseEvent{
		ID:       "evt-1",
		CaseID:   "case-1",
		Type:     domain.CaseEventParalegalChanged,
		PrevUser: strPtr("para-1"),
		Case:     domain.CaseSnapshot{ID: "case-1", Topic: domain.TopicRepairs, IsOpen: true},
	}

	matches, err := f.matcher.Match(context.Background(), event)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatch_UnfilledRoleSkippedOthersStillFire(t *testing.T) {
	f := newFixture(t, "")
	f.saveTrigger(t, "trg-lawyer", domain.TopicRepairs, domain.CaseEventCreated, domain.RoleLawyer)
	f.saveTrigger(t, "trg-para", domain.TopicRepairs, domain.CaseEventCreated, domain.RoleParalegal)

	// Lawyer not yet assigned: only the paralegal trigger fires.
	event := createdEvent(domain.CaseSnapshot{
		ID: "case-1", Topic: domain.TopicRepairs, ParalegalID: strPtr("para-1"), IsOpen: true,
	})

	matches, err := f.matcher.Match(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "trg-para", matches[0].Trigger.ID)
}

func TestMatch_LawyerActingAsParalegalSuppressesParalegalTriggers(t *testing.T) {
	f := newFixture(t, "")
	f.users.Put(&domain.User{ID: "hybrid-1", FullName: "Hy Brid", IsLawyer: true, IsActive: true})
	f.saveTrigger(t, "trg-para", domain.TopicRepairs, domain.CaseEventCreated, domain.RoleParalegal)
	f.saveTrigger(t, "trg-lawyer", domain.TopicRepairs, domain.CaseEventCreated, domain.RoleLawyer)

	event := createdEvent(domain.CaseSnapshot{
		ID:          "case-1",
		Topic:       domain.TopicRepairs,
		ParalegalID: strPtr("hybrid-1"),
		LawyerID:    strPtr("law-1"),
		IsOpen:      true,
	})

	matches, err := f.matcher.Match(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "trg-lawyer", matches[0].Trigger.ID)
}

func TestMatch_CoordinatorResolvesToConfiguredAccount(t *testing.T) {
	f := newFixture(t, "coord-1")
	f.users.Put(&domain.User{ID: "coord-1", FullName: "Co Ordinator", IsCoordinator: true, IsActive: true})
	f.saveTrigger(t, "trg-coord", domain.TopicAny, domain.CaseEventCreated, domain.RoleCoordinator)

	event := createdEvent(domain.CaseSnapshot{ID: "case-1", Topic: domain.TopicBonds, IsOpen: true})

	matches, err := f.matcher.Match(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "coord-1", matches[0].AssigneeID)
}

func TestMatch_CoordinatorSkippedWhenUnconfiguredOrInactive(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		f := newFixture(t, "")
		f.saveTrigger(t, "trg-coord", domain.TopicAny, domain.CaseEventCreated, domain.RoleCoordinator)

		matches, err := f.matcher.Match(context.Background(),
			createdEvent(domain.CaseSnapshot{ID: "case-1", Topic: domain.TopicRepairs, IsOpen: true}))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("inactive account", func(t *testing.T) {
		f := newFixture(t, "coord-1")
		f.users.Put(&domain.User{ID: "coord-1", IsCoordinator: true, IsActive: false})
		f.saveTrigger(t, "trg-coord", domain.TopicAny, domain.CaseEventCreated, domain.RoleCoordinator)

		matches, err := f.matcher.Match(context.Background(),
			createdEvent(domain.CaseSnapshot{ID: "case-1", Topic: domain.TopicRepairs, IsOpen: true}))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newFixture(t, "coord-missing")
		f.saveTrigger(t, "trg-coord", domain.TopicAny, domain.CaseEventCreated, domain.RoleCoordinator)

		matches, err := f.matcher.Match(context.Background(),
			createdEvent(domain.CaseSnapshot{ID: "case-1", Topic: domain.TopicRepairs, IsOpen: true}))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestMatch_TopicMismatchDoesNotFire(t *testing.T) {
	f := newFixture(t, "")
	f.saveTrigger(t, "trg-1", domain.TopicBonds, domain.CaseEventCreated, domain.RoleParalegal)

	event := createdEvent(domain.CaseSnapshot{
		ID: "case-1", Topic: domain.TopicRepairs, ParalegalID: strPtr("para-1"), IsOpen: true,
	})

	matches, err := f.matcher.Match(context.Background(), event)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
