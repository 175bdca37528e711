package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

func validTrigger() *domain.Trigger {
	stage := domain.StageAdvice
	return &domain.Trigger{
		ID:         "trg-1",
		Topic:      domain.TopicRepairs,
		EventType:  domain.CaseEventStageChanged,
		EventStage: &stage,
		Role:       domain.RoleParalegal,
		IsActive:   true,
		Templates: []domain.TaskTemplate{
			{ID: "tpl-1", TriggerID: "trg-1", Name: "Draft advice", DueInDays: 7},
		},
	}
}

func TestTriggerValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Trigger)
		wantErr bool
	}{
		{
			name:   "valid trigger",
			mutate: func(*domain.Trigger) {},
		},
		{
			name:    "unknown event type",
			mutate:  func(trg *domain.Trigger) { trg.EventType = "REOPENED" },
			wantErr: true,
		},
		{
			name:    "unknown role",
			mutate:  func(trg *domain.Trigger) { trg.Role = "ADMIN" },
			wantErr: true,
		},
		{
			name:    "stage-changed without stage",
			mutate:  func(trg *domain.Trigger) { trg.EventStage = nil },
			wantErr: true,
		},
		{
			name:    "no templates",
			mutate:  func(trg *domain.Trigger) { trg.Templates = nil },
			wantErr: true,
		},
		{
			name:    "template without name",
			mutate:  func(trg *domain.Trigger) { trg.Templates[0].Name = "" },
			wantErr: true,
		},
		{
			name:    "negative due-in days",
			mutate:  func(trg *domain.Trigger) { trg.Templates[0].DueInDays = -1 },
			wantErr: true,
		},
		{
			name: "created trigger does not need a stage",
			mutate: func(trg *domain.Trigger) {
				trg.EventType = domain.CaseEventCreated
				trg.EventStage = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trg := validTrigger()
			tt.mutate(trg)
			err := trg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidTrigger)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTriggerMatches(t *testing.T) {
	stage := domain.StageAdvice
	otherStage := domain.StageFormalLetter
	event := domain.CaseEvent{
		CaseID:    "case-1",
		Type:      domain.CaseEventStageChanged,
		NextStage: &stage,
		Case:      domain.CaseSnapshot{ID: "case-1", Topic: domain.TopicRepairs},
	}

	t.Run("matching trigger fires", func(t *testing.T) {
		assert.True(t, validTrigger().Matches(event))
	})

	t.Run("inactive trigger never fires", func(t *testing.T) {
		trg := validTrigger()
		trg.IsActive = false
		assert.False(t, trg.Matches(event))
	})

	t.Run("different event type", func(t *testing.T) {
		trg := validTrigger()
		trg.EventType = domain.CaseEventCreated
		assert.False(t, trg.Matches(event))
	})

	t.Run("different topic", func(t *testing.T) {
		trg := validTrigger()
		trg.Topic = domain.TopicBonds
		assert.False(t, trg.Matches(event))
	})

	t.Run("wildcard topic matches any case", func(t *testing.T) {
		trg := validTrigger()
		trg.Topic = domain.TopicAny
		assert.True(t, trg.Matches(event))
	})

	t.Run("different stage", func(t *testing.T) {
		trg := validTrigger()
		trg.EventStage = &otherStage
		assert.False(t, trg.Matches(event))
	})
}

func TestTaskSuspendResume(t *testing.T) {
	owner := "para-1"
	task := &domain.Task{
		ID:           "task-1",
		OwnerID:      &owner,
		AssignedToID: &owner,
		IsOpen:       true,
	}

	task.Suspend(domain.RoleParalegal)

	assert.True(t, task.IsSuspended)
	assert.Nil(t, task.OwnerID)
	assert.Nil(t, task.AssignedToID)
	assert.Equal(t, domain.RoleParalegal, *task.PrevOwnerRole)
	assert.True(t, task.CheckSuspension())

	task.Resume("para-2")

	assert.False(t, task.IsSuspended)
	assert.Equal(t, "para-2", *task.OwnerID)
	assert.Equal(t, "para-2", *task.AssignedToID)
	assert.Nil(t, task.PrevOwnerRole)
	assert.True(t, task.CheckSuspension())
}

func TestTaskCheckSuspension_RejectsPartialState(t *testing.T) {
	owner := "para-1"
	task := &domain.Task{ID: "task-1", IsSuspended: true, OwnerID: &owner}
	assert.False(t, task.CheckSuspension())

	role := domain.RoleParalegal
	task = &domain.Task{ID: "task-2", IsSuspended: true, PrevOwnerRole: &role}
	assert.True(t, task.CheckSuspension())
}
