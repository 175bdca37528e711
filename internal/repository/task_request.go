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

var taskRequestColumns = []string{
	"id", "task_id", "request_task_id", "type", "status", "is_approved",
	"note", "requested_by_id", "created_at", "updated_at",
}

// TaskRequestRepository handles database operations for task requests.
type TaskRequestRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRequestRepository creates a new TaskRequestRepository.
func NewTaskRequestRepository(pool *pgxpool.Pool) *TaskRequestRepository {
	return &TaskRequestRepository{pool: pool}
}

// GetByID retrieves a request by id.
func (r *TaskRequestRepository) GetByID(ctx context.Context, requestID string) (*domain.TaskRequest, error) {
	query, args, err := psql.
		Select(taskRequestColumns...).
		From("task_requests").
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task request: %w", err)
	}

	var request domain.TaskRequest
	err = querier(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&request.ID,
		&request.TaskID,
		&request.RequestTaskID,
		&request.Type,
		&request.Status,
		&request.IsApproved,
		&request.Note,
		&request.RequestedByID,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskRequestNotFound
		}
		return nil, fmt.Errorf("scan task request: %w", err)
	}
	return &request, nil
}

// Create inserts a request.
func (r *TaskRequestRepository) Create(ctx context.Context, request *domain.TaskRequest) error {
	query, args, err := psql.
		Insert("task_requests").
		Columns(taskRequestColumns...).
		Values(
			request.ID,
			request.TaskID,
			request.RequestTaskID,
			request.Type,
			request.Status,
			request.IsApproved,
			request.Note,
			request.RequestedByID,
			request.CreatedAt,
			request.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for task request: %w", err)
	}

	if _, err := querier(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create task request: %w", err)
	}
	return nil
}

// Update replaces a request's mutable fields.
func (r *TaskRequestRepository) Update(ctx context.Context, request *domain.TaskRequest) error {
	query, args, err := psql.
		Update("task_requests").
		Set("status", request.Status).
		Set("is_approved", request.IsApproved).
		Set("note", request.Note).
		Set("updated_at", request.UpdatedAt).
		Where(sq.Eq{"id": request.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for task request %s: %w", request.ID, err)
	}

	tag, err := querier(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task request %s: %w", request.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskRequestNotFound
	}
	return nil
}
