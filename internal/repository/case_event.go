package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

var caseEventColumns = []string{
	"id", "case_id", "type", "prev_user", "next_user", "prev_stage",
	"next_stage", "prev_open", "next_open", "created_at",
}

// CaseEventRepository journals detected case events. Append-only; idempotent
// on id so a reprocessed event does not duplicate its journal row.
type CaseEventRepository struct {
	pool *pgxpool.Pool
}

// NewCaseEventRepository creates a new CaseEventRepository.
func NewCaseEventRepository(pool *pgxpool.Pool) *CaseEventRepository {
	return &CaseEventRepository{pool: pool}
}

// Append journals a case event.
func (r *CaseEventRepository) Append(ctx context.Context, event *domain.CaseEvent) error {
	query, args, err := psql.
		Insert("case_events").
		Columns(caseEventColumns...).
		Values(
			event.ID,
			event.CaseID,
			event.Type,
			event.PrevUser,
			event.NextUser,
			event.PrevStage,
			event.NextStage,
			event.PrevOpen,
			event.NextOpen,
			event.CreatedAt,
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Append query for case event: %w", err)
	}

	if _, err := querier(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("append case event: %w", err)
	}
	return nil
}

// ListByCase returns a case's journal in append order.
func (r *CaseEventRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.CaseEvent, error) {
	query, args, err := psql.
		Select(caseEventColumns...).
		From("case_events").
		Where(sq.Eq{"case_id": caseID}).
		OrderBy("created_at ASC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByCase query: %w", err)
	}

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query case events: %w", err)
	}
	defer rows.Close()

	var events []*domain.CaseEvent
	for rows.Next() {
		var event domain.CaseEvent
		err := rows.Scan(
			&event.ID,
			&event.CaseID,
			&event.Type,
			&event.PrevUser,
			&event.NextUser,
			&event.PrevStage,
			&event.NextStage,
			&event.PrevOpen,
			&event.NextOpen,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan case event: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return events, nil
}
