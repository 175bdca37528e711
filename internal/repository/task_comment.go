package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// TaskCommentRepository handles database operations for task comments.
type TaskCommentRepository struct {
	pool *pgxpool.Pool
}

// NewTaskCommentRepository creates a new TaskCommentRepository.
func NewTaskCommentRepository(pool *pgxpool.Pool) *TaskCommentRepository {
	return &TaskCommentRepository{pool: pool}
}

// Append inserts a task comment.
func (r *TaskCommentRepository) Append(ctx context.Context, comment *domain.TaskComment) error {
	query, args, err := psql.
		Insert("task_comments").
		Columns("id", "task_id", "author_id", "text", "created_at").
		Values(comment.ID, comment.TaskID, comment.AuthorID, comment.Text, comment.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Append query for task comment: %w", err)
	}

	if _, err := querier(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("append task comment: %w", err)
	}
	return nil
}

// ListByTask retrieves all comments for a task in append order.
func (r *TaskCommentRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.TaskComment, error) {
	query, args, err := psql.
		Select("id", "task_id", "author_id", "text", "created_at").
		From("task_comments").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("created_at ASC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByTask query: %w", err)
	}

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.TaskComment
	for rows.Next() {
		var comment domain.TaskComment
		err := rows.Scan(
			&comment.ID,
			&comment.TaskID,
			&comment.AuthorID,
			&comment.Text,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task comment: %w", err)
		}
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return comments, nil
}
