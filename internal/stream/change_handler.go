package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnikaLegal/caseflow/internal/audit"
	"github.com/AnikaLegal/caseflow/internal/domain"
)

// ChangeRecordHandler processes change record messages. Each message
// describes a field-level mutation of a task or task request; the audit
// synthesizer turns it into task events.
type ChangeRecordHandler struct {
	synthesizer *audit.Synthesizer
	logger      *slog.Logger
}

// NewChangeRecordHandler creates a change record handler.
func NewChangeRecordHandler(synthesizer *audit.Synthesizer, logger *slog.Logger) *ChangeRecordHandler {
	return &ChangeRecordHandler{
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// fieldChangePayload matches the JSON structure of a single field change.
type fieldChangePayload struct {
	Old *string `json:"old"`
	New *string `json:"new"`
}

// changeRecordPayload matches the JSON structure for change record messages.
type changeRecordPayload struct {
	ID         string                        `json:"id"`
	EntityType string                        `json:"entity_type"`
	EntityID   string                        `json:"entity_id"`
	Fields     map[string]fieldChangePayload `json:"fields"`
	ActorID    *string                       `json:"actor_id"`
	Comment    string                        `json:"comment"`
	Metadata   map[string]string             `json:"metadata"`
	OccurredAt string                        `json:"occurred_at"`
}

// Handle processes a change record message.
func (h *ChangeRecordHandler) Handle(ctx context.Context, msg *Message) error {
	var payload changeRecordPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.Error("failed to unmarshal change record payload",
			"key", string(msg.Key),
			"error", err,
		)
		// Return nil to commit - malformed messages should not block
		return nil
	}
	if payload.ID == "" || payload.EntityID == "" {
		h.logger.Error("change record missing identifiers", "key", string(msg.Key))
		return nil
	}

	rec := domain.ChangeRecord{
		ID:         payload.ID,
		EntityType: domain.EntityType(payload.EntityType),
		EntityID:   payload.EntityID,
		Fields:     make(map[string]domain.FieldChange, len(payload.Fields)),
		ActorID:    payload.ActorID,
		Comment:    payload.Comment,
		Metadata:   payload.Metadata,
	}
	for name, change := range payload.Fields {
		rec.Fields[name] = domain.FieldChange{Old: change.Old, New: change.New}
	}

	if payload.OccurredAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, payload.OccurredAt); err == nil {
			rec.OccurredAt = ts
		} else {
			rec.OccurredAt = time.Now()
		}
	} else {
		rec.OccurredAt = time.Now()
	}

	if err := h.synthesizer.Process(ctx, rec); err != nil {
		return fmt.Errorf("process change record %s: %w", rec.ID, err)
	}
	return nil
}
