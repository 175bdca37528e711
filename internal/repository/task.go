package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "case_id", "template_id", "type", "name", "description", "status",
	"owner_id", "assigned_to_id", "is_open", "is_suspended", "prev_owner_role",
	"is_urgent", "due_at", "closed_at", "created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.CaseID,
		&task.TemplateID,
		&task.Type,
		&task.Name,
		&task.Description,
		&task.Status,
		&task.OwnerID,
		&task.AssignedToID,
		&task.IsOpen,
		&task.IsSuspended,
		&task.PrevOwnerRole,
		&task.IsUrgent,
		&task.DueAt,
		&task.ClosedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(querier(ctx, r.pool).QueryRow(ctx, query, args...))
}

// ListOpenByCase returns open, non-suspended tasks for a case.
func (r *TaskRepository) ListOpenByCase(ctx context.Context, caseID string) ([]*domain.Task, error) {
	return r.listWhere(ctx, sq.Eq{"case_id": caseID, "is_open": true, "is_suspended": false})
}

// ListSuspendedByCase returns suspended tasks for a case.
func (r *TaskRepository) ListSuspendedByCase(ctx context.Context, caseID string) ([]*domain.Task, error) {
	return r.listWhere(ctx, sq.Eq{"case_id": caseID, "is_suspended": true})
}

// ListByCase returns every task for a case, newest first.
func (r *TaskRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Task, error) {
	return r.listWhere(ctx, sq.Eq{"case_id": caseID})
}

func (r *TaskRepository) listWhere(ctx context.Context, pred sq.Eq) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(pred).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build task list query: %w", err)
	}

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return scanTasks(rows)
}

// FindByTriple looks up the task for a (case, template, owner) triple.
func (r *TaskRepository) FindByTriple(ctx context.Context, caseID, templateID, ownerID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"case_id": caseID, "template_id": templateID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindByTriple query: %w", err)
	}

	return scanTask(querier(ctx, r.pool).QueryRow(ctx, query, args...))
}

// Create inserts a task. The unique index on (case_id, template_id,
// owner_id) is the last line of defense against concurrent duplicate
// creation; a conflict surfaces as domain.ErrDuplicateTask.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	query, args, err := psql.
		Insert("tasks").
		Columns(taskColumns...).
		Values(
			task.ID,
			task.CaseID,
			task.TemplateID,
			task.Type,
			task.Name,
			task.Description,
			task.Status,
			task.OwnerID,
			task.AssignedToID,
			task.IsOpen,
			task.IsSuspended,
			task.PrevOwnerRole,
			task.IsUrgent,
			task.DueAt,
			task.ClosedAt,
			task.CreatedAt,
			task.UpdatedAt,
		).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for task: %w", err)
	}

	tag, err := querier(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateTask
	}
	return nil
}

// Update replaces a task's mutable fields.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	query, args, err := psql.
		Update("tasks").
		Set("status", task.Status).
		Set("owner_id", task.OwnerID).
		Set("assigned_to_id", task.AssignedToID).
		Set("is_open", task.IsOpen).
		Set("is_suspended", task.IsSuspended).
		Set("prev_owner_role", task.PrevOwnerRole).
		Set("due_at", task.DueAt).
		Set("closed_at", task.ClosedAt).
		Set("updated_at", task.UpdatedAt).
		Where(sq.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for task %s: %w", task.ID, err)
	}

	tag, err := querier(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
