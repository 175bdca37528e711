package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// TaskEventRepository handles database operations for the synthesized task
// event feed. Events are append-only: there is no update or delete path.
type TaskEventRepository struct {
	pool *pgxpool.Pool
}

// NewTaskEventRepository creates a new TaskEventRepository.
func NewTaskEventRepository(pool *pgxpool.Pool) *TaskEventRepository {
	return &TaskEventRepository{pool: pool}
}

// Append inserts a task event. Idempotent on id so a redelivered change
// record cannot double-write an event that already committed.
func (r *TaskEventRepository) Append(ctx context.Context, event *domain.TaskEvent) error {
	query, args, err := psql.
		Insert("task_events").
		Columns("id", "task_id", "actor_id", "type", "data", "note", "description", "created_at").
		Values(
			event.ID,
			event.TaskID,
			event.ActorID,
			event.Type,
			event.Data,
			event.Note,
			event.Description,
			event.CreatedAt,
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Append query for task event: %w", err)
	}

	if _, err := querier(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("append task event: %w", err)
	}
	return nil
}

// ListByTask retrieves all events for a task in append order.
func (r *TaskEventRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.TaskEvent, error) {
	query, args, err := psql.
		Select("id", "task_id", "actor_id", "type", "data", "note", "description", "created_at").
		From("task_events").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("created_at ASC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByTask query: %w", err)
	}

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task events: %w", err)
	}
	defer rows.Close()

	var events []*domain.TaskEvent
	for rows.Next() {
		var event domain.TaskEvent
		err := rows.Scan(
			&event.ID,
			&event.TaskID,
			&event.ActorID,
			&event.Type,
			&event.Data,
			&event.Note,
			&event.Description,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task event: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return events, nil
}
