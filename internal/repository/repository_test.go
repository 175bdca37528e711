package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/AnikaLegal/caseflow/internal/database"
	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/repository"
)

func strPtr(s string) *string { return &s }

// RepositoryTestSuite exercises the postgres repositories against a real
// database. Set DATABASE_URL to run it.
type RepositoryTestSuite struct {
	suite.Suite
	pool     *pgxpool.Pool
	txr      *repository.TxRunner
	tasks    *repository.TaskRepository
	events   *repository.TaskEventRepository
	comments *repository.TaskCommentRepository
	triggers *repository.TriggerRepository
	requests *repository.TaskRequestRepository
	journal  *repository.CaseEventRepository
	users    *repository.UserRepository
}

func (s *RepositoryTestSuite) SetupSuite() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		s.T().Skip("DATABASE_URL not set, skipping postgres repository tests")
	}

	ctx := context.Background()

	db, err := database.New(ctx, databaseURL)
	s.Require().NoError(err, "failed to connect to database")
	s.pool = db.Pool()

	err = database.RunMigrations(ctx, s.pool)
	s.Require().NoError(err, "failed to run migrations")

	s.txr = repository.NewTxRunner(s.pool)
	s.tasks = repository.NewTaskRepository(s.pool)
	s.events = repository.NewTaskEventRepository(s.pool)
	s.comments = repository.NewTaskCommentRepository(s.pool)
	s.triggers = repository.NewTriggerRepository(s.pool)
	s.requests = repository.NewTaskRequestRepository(s.pool)
	s.journal = repository.NewCaseEventRepository(s.pool)
	s.users = repository.NewUserRepository(s.pool)
}

func (s *RepositoryTestSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx,
		"TRUNCATE users, triggers, task_templates, tasks, task_comments, task_events, case_events, task_requests CASCADE")
	s.Require().NoError(err, "failed to truncate tables")
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *RepositoryTestSuite) newTask(caseID, templateID, ownerID string) *domain.Task {
	now := time.Now().UTC().Truncate(time.Microsecond)
	task := &domain.Task{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		Type:      "Follow up",
		Name:      "Follow up",
		Status:    domain.TaskStatusNotStarted,
		IsOpen:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if templateID != "" {
		task.TemplateID = &templateID
	}
	if ownerID != "" {
		task.OwnerID = &ownerID
		task.AssignedToID = &ownerID
	}
	return task
}

func (s *RepositoryTestSuite) TestTaskCreateAndGet() {
	ctx := context.Background()
	task := s.newTask(uuid.NewString(), uuid.NewString(), "para-1")
	s.Require().NoError(s.tasks.Create(ctx, task))

	got, err := s.tasks.GetByID(ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(task.ID, got.ID)
	s.Equal(task.CaseID, got.CaseID)
	s.Equal("para-1", *got.OwnerID)
	s.Equal(domain.TaskStatusNotStarted, got.Status)
	s.True(got.IsOpen)
}

func (s *RepositoryTestSuite) TestTaskGet_NotFound() {
	_, err := s.tasks.GetByID(context.Background(), uuid.NewString())
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *RepositoryTestSuite) TestTaskCreate_DuplicateTriple() {
	ctx := context.Background()
	caseID, templateID := uuid.NewString(), uuid.NewString()

	s.Require().NoError(s.tasks.Create(ctx, s.newTask(caseID, templateID, "para-1")))

	err := s.tasks.Create(ctx, s.newTask(caseID, templateID, "para-1"))
	s.ErrorIs(err, domain.ErrDuplicateTask)

	// Same template for another owner is a different task.
	s.NoError(s.tasks.Create(ctx, s.newTask(caseID, templateID, "para-2")))
}

func (s *RepositoryTestSuite) TestTaskUpdateAndSuspendedList() {
	ctx := context.Background()
	caseID := uuid.NewString()
	task := s.newTask(caseID, uuid.NewString(), "para-1")
	s.Require().NoError(s.tasks.Create(ctx, task))

	task.Suspend(domain.RoleParalegal)
	task.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.tasks.Update(ctx, task))

	open, err := s.tasks.ListOpenByCase(ctx, caseID)
	s.Require().NoError(err)
	s.Empty(open)

	suspended, err := s.tasks.ListSuspendedByCase(ctx, caseID)
	s.Require().NoError(err)
	s.Require().Len(suspended, 1)
	s.Require().NotNil(suspended[0].PrevOwnerRole)
	s.Equal(domain.RoleParalegal, *suspended[0].PrevOwnerRole)
}

func (s *RepositoryTestSuite) TestTaskUpdate_NotFound() {
	err := s.tasks.Update(context.Background(), s.newTask(uuid.NewString(), "", ""))
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *RepositoryTestSuite) TestTriggerSaveAndFindMatching() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	trg := &domain.Trigger{
		ID:        uuid.NewString(),
		Topic:     domain.TopicRepairs,
		EventType: domain.CaseEventCreated,
		Role:      domain.RoleParalegal,
		IsActive:  true,
		Templates: []domain.TaskTemplate{
			{ID: uuid.NewString(), Name: "First", DueInDays: 2, Position: 0},
			{ID: uuid.NewString(), Name: "Second", Position: 1},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.triggers.Save(ctx, trg))

	matching, err := s.triggers.FindMatching(ctx, domain.TopicRepairs, domain.CaseEventCreated)
	s.Require().NoError(err)
	s.Require().Len(matching, 1)
	s.Require().Len(matching[0].Templates, 2)
	s.Equal("First", matching[0].Templates[0].Name)
	s.Equal("Second", matching[0].Templates[1].Name)

	// Other topics only see wildcard triggers.
	matching, err = s.triggers.FindMatching(ctx, domain.TopicBonds, domain.CaseEventCreated)
	s.Require().NoError(err)
	s.Empty(matching)
}

func (s *RepositoryTestSuite) TestTriggerSave_ReplacesTemplates() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	trg := &domain.Trigger{
		ID:        uuid.NewString(),
		Topic:     domain.TopicAny,
		EventType: domain.CaseEventCreated,
		Role:      domain.RoleParalegal,
		IsActive:  true,
		Templates: []domain.TaskTemplate{{ID: uuid.NewString(), Name: "Old template"}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.triggers.Save(ctx, trg))

	trg.Templates = []domain.TaskTemplate{{ID: uuid.NewString(), Name: "New template"}}
	s.Require().NoError(s.triggers.Save(ctx, trg))

	got, err := s.triggers.GetByID(ctx, trg.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Templates, 1)
	s.Equal("New template", got.Templates[0].Name)
}

func (s *RepositoryTestSuite) TestTriggerSave_RejectsInvalid() {
	err := s.triggers.Save(context.Background(), &domain.Trigger{
		ID:        uuid.NewString(),
		Topic:     domain.TopicAny,
		EventType: domain.CaseEventCreated,
		Role:      domain.RoleParalegal,
		IsActive:  true,
		// No templates.
	})
	s.ErrorIs(err, domain.ErrInvalidTrigger)
}

func (s *RepositoryTestSuite) TestTaskEventAppend_Idempotent() {
	ctx := context.Background()
	task := s.newTask(uuid.NewString(), "", "")
	s.Require().NoError(s.tasks.Create(ctx, task))

	event := &domain.TaskEvent{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		Type:      domain.TaskEventStatusChanged,
		Data:      map[string]string{domain.DataOldStatus: "NOT_STARTED", domain.DataNewStatus: "IN_PROGRESS"},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.events.Append(ctx, event))
	s.Require().NoError(s.events.Append(ctx, event), "replay of the same event id must be absorbed")

	events, err := s.events.ListByTask(ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("IN_PROGRESS", events[0].Data[domain.DataNewStatus])
}

func (s *RepositoryTestSuite) TestCaseEventJournal() {
	ctx := context.Background()
	caseID := uuid.NewString()
	event := &domain.CaseEvent{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		Type:      domain.CaseEventParalegalChanged,
		PrevUser:  strPtr("para-1"),
		NextUser:  strPtr("para-2"),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.journal.Append(ctx, event))
	s.Require().NoError(s.journal.Append(ctx, event))

	events, err := s.journal.ListByCase(ctx, caseID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(domain.CaseEventParalegalChanged, events[0].Type)
	s.Equal("para-1", *events[0].PrevUser)
}

func (s *RepositoryTestSuite) TestTaskRequestRoundTrip() {
	ctx := context.Background()
	target := s.newTask(uuid.NewString(), "", "")
	requesting := s.newTask(uuid.NewString(), "", "")
	s.Require().NoError(s.tasks.Create(ctx, target))
	s.Require().NoError(s.tasks.Create(ctx, requesting))

	now := time.Now().UTC().Truncate(time.Microsecond)
	request := &domain.TaskRequest{
		ID:            uuid.NewString(),
		TaskID:        target.ID,
		RequestTaskID: requesting.ID,
		Type:          domain.TaskRequestApproval,
		Status:        domain.TaskRequestPending,
		RequestedByID: strPtr("para-1"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.Require().NoError(s.requests.Create(ctx, request))

	approved := true
	request.Status = domain.TaskRequestDone
	request.IsApproved = &approved
	request.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.requests.Update(ctx, request))

	got, err := s.requests.GetByID(ctx, request.ID)
	s.Require().NoError(err)
	s.Equal(domain.TaskRequestDone, got.Status)
	s.Require().NotNil(got.IsApproved)
	s.True(*got.IsApproved)
}

func (s *RepositoryTestSuite) TestUserLookup() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, full_name, email, is_lawyer, is_coordinator, is_active)
		VALUES ('law-1', 'Lou Lawyer', 'lou@example.com', true, false, true)
	`)
	s.Require().NoError(err)

	user, err := s.users.GetByID(ctx, "law-1")
	s.Require().NoError(err)
	s.Equal("Lou Lawyer", user.FullName)
	s.True(user.IsLawyer)

	isLawyer, err := s.users.IsLawyer(ctx, "law-1")
	s.Require().NoError(err)
	s.True(isLawyer)

	isLawyer, err = s.users.IsLawyer(ctx, "missing")
	s.Require().NoError(err)
	s.False(isLawyer)

	_, err = s.users.GetByID(ctx, "missing")
	s.ErrorIs(err, domain.ErrUserNotFound)
}

func (s *RepositoryTestSuite) TestTxRunner_RollsBackOnError() {
	ctx := context.Background()
	task := s.newTask(uuid.NewString(), "", "")

	boom := errors.New("boom")
	err := s.txr.InTx(ctx, func(ctx context.Context) error {
		if err := s.tasks.Create(ctx, task); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.tasks.GetByID(ctx, task.ID)
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *RepositoryTestSuite) TestTxRunner_CommitsOnSuccess() {
	ctx := context.Background()
	task := s.newTask(uuid.NewString(), "", "")

	err := s.txr.InTx(ctx, func(ctx context.Context) error {
		return s.tasks.Create(ctx, task)
	})
	s.Require().NoError(err)

	_, err = s.tasks.GetByID(ctx, task.ID)
	s.NoError(err)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
