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

var triggerColumns = []string{
	"id", "topic", "event_type", "event_stage", "role", "is_active",
	"created_at", "updated_at",
}

var templateColumns = []string{
	"id", "trigger_id", "name", "description", "due_in_days", "is_urgent",
	"requires_approval", "position",
}

// TriggerRepository handles database operations for trigger configuration.
// Triggers are validated at save time; matching reads assume valid rows.
type TriggerRepository struct {
	pool *pgxpool.Pool
}

// NewTriggerRepository creates a new TriggerRepository.
func NewTriggerRepository(pool *pgxpool.Pool) *TriggerRepository {
	return &TriggerRepository{pool: pool}
}

// Save validates and upserts a trigger with its templates. Template rows are
// replaced wholesale to keep ordering authoritative.
func (r *TriggerRepository) Save(ctx context.Context, trigger *domain.Trigger) error {
	if err := trigger.Validate(); err != nil {
		return err
	}

	query, args, err := psql.
		Insert("triggers").
		Columns(triggerColumns...).
		Values(
			trigger.ID,
			trigger.Topic,
			trigger.EventType,
			trigger.EventStage,
			trigger.Role,
			trigger.IsActive,
			trigger.CreatedAt,
			trigger.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			topic = EXCLUDED.topic,
			event_type = EXCLUDED.event_type,
			event_stage = EXCLUDED.event_stage,
			role = EXCLUDED.role,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Save query for trigger: %w", err)
	}
	if _, err := querier(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save trigger: %w", err)
	}

	del, delArgs, err := psql.
		Delete("task_templates").
		Where(sq.Eq{"trigger_id": trigger.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build template delete query: %w", err)
	}
	if _, err := querier(ctx, r.pool).Exec(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("replace task templates: %w", err)
	}

	for i := range trigger.Templates {
		tpl := &trigger.Templates[i]
		ins, insArgs, err := psql.
			Insert("task_templates").
			Columns(templateColumns...).
			Values(
				tpl.ID,
				trigger.ID,
				tpl.Name,
				tpl.Description,
				tpl.DueInDays,
				tpl.IsUrgent,
				tpl.RequiresApproval,
				tpl.Position,
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("build template insert query: %w", err)
		}
		if _, err := querier(ctx, r.pool).Exec(ctx, ins, insArgs...); err != nil {
			return fmt.Errorf("insert task template %q: %w", tpl.Name, err)
		}
	}
	return nil
}

// GetByID retrieves a trigger with its templates.
func (r *TriggerRepository) GetByID(ctx context.Context, triggerID string) (*domain.Trigger, error) {
	query, args, err := psql.
		Select(triggerColumns...).
		From("triggers").
		Where(sq.Eq{"id": triggerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for trigger: %w", err)
	}

	trigger, err := scanTrigger(querier(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if err := r.loadTemplates(ctx, []*domain.Trigger{trigger}); err != nil {
		return nil, err
	}
	return trigger, nil
}

// FindMatching returns active triggers for the event type whose topic is the
// given topic or the wildcard, templates loaded.
func (r *TriggerRepository) FindMatching(ctx context.Context, topic domain.CaseTopic, eventType domain.CaseEventType) ([]*domain.Trigger, error) {
	query, args, err := psql.
		Select(triggerColumns...).
		From("triggers").
		Where(sq.Eq{
			"event_type": eventType,
			"is_active":  true,
			"topic":      []domain.CaseTopic{topic, domain.TopicAny},
		}).
		OrderBy("created_at ASC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindMatching query: %w", err)
	}

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query triggers: %w", err)
	}
	defer rows.Close()

	var triggers []*domain.Trigger
	for rows.Next() {
		trigger, err := scanTrigger(rows)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, trigger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if err := r.loadTemplates(ctx, triggers); err != nil {
		return nil, err
	}
	return triggers, nil
}

func scanTrigger(row pgx.Row) (*domain.Trigger, error) {
	var trigger domain.Trigger
	err := row.Scan(
		&trigger.ID,
		&trigger.Topic,
		&trigger.EventType,
		&trigger.EventStage,
		&trigger.Role,
		&trigger.IsActive,
		&trigger.CreatedAt,
		&trigger.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTriggerNotFound
		}
		return nil, fmt.Errorf("scan trigger: %w", err)
	}
	return &trigger, nil
}

// loadTemplates attaches template rows to the given triggers in position
// order.
func (r *TriggerRepository) loadTemplates(ctx context.Context, triggers []*domain.Trigger) error {
	if len(triggers) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Trigger, len(triggers))
	ids := make([]string, 0, len(triggers))
	for _, t := range triggers {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	query, args, err := psql.
		Select(templateColumns...).
		From("task_templates").
		Where(sq.Eq{"trigger_id": ids}).
		OrderBy("position ASC", "id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build template load query: %w", err)
	}

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query task templates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tpl domain.TaskTemplate
		err := rows.Scan(
			&tpl.ID,
			&tpl.TriggerID,
			&tpl.Name,
			&tpl.Description,
			&tpl.DueInDays,
			&tpl.IsUrgent,
			&tpl.RequiresApproval,
			&tpl.Position,
		)
		if err != nil {
			return fmt.Errorf("scan task template: %w", err)
		}
		if trigger, ok := byID[tpl.TriggerID]; ok {
			trigger.Templates = append(trigger.Templates, tpl)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}
