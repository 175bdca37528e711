package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/lifecycle"
)

// CaseMutationHandler processes case mutation messages. Each message
// carries the case snapshot before and after a save; the lifecycle
// controller derives the events and applies them.
type CaseMutationHandler struct {
	controller *lifecycle.Controller
	logger     *slog.Logger
}

// NewCaseMutationHandler creates a case mutation handler.
func NewCaseMutationHandler(controller *lifecycle.Controller, logger *slog.Logger) *CaseMutationHandler {
	return &CaseMutationHandler{
		controller: controller,
		logger:     logger,
	}
}

// snapshotPayload matches the JSON structure of a case snapshot.
type snapshotPayload struct {
	ID          string  `json:"id"`
	Topic       string  `json:"topic"`
	ParalegalID *string `json:"paralegal_id"`
	LawyerID    *string `json:"lawyer_id"`
	Stage       string  `json:"stage"`
	IsOpen      bool    `json:"is_open"`
}

// caseMutationPayload matches the JSON structure for case mutation messages.
type caseMutationPayload struct {
	Prev *snapshotPayload `json:"prev"`
	Next *snapshotPayload `json:"next"`
}

func (p snapshotPayload) toDomain() domain.CaseSnapshot {
	return domain.CaseSnapshot{
		ID:          p.ID,
		Topic:       domain.CaseTopic(p.Topic),
		ParalegalID: p.ParalegalID,
		LawyerID:    p.LawyerID,
		Stage:       domain.CaseStage(p.Stage),
		IsOpen:      p.IsOpen,
	}
}

// Handle processes a case mutation message.
func (h *CaseMutationHandler) Handle(ctx context.Context, msg *Message) error {
	var payload caseMutationPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.Error("failed to unmarshal case mutation payload",
			"key", string(msg.Key),
			"error", err,
		)
		// Return nil to commit - malformed messages should not block
		return nil
	}
	if payload.Next == nil || payload.Next.ID == "" {
		h.logger.Error("case mutation missing next snapshot", "key", string(msg.Key))
		return nil
	}

	var prev *domain.CaseSnapshot
	if payload.Prev != nil {
		p := payload.Prev.toDomain()
		prev = &p
	}
	next := payload.Next.toDomain()

	if err := h.controller.HandleCaseChange(ctx, prev, next); err != nil {
		return fmt.Errorf("handle case change for case %s: %w", next.ID, err)
	}
	return nil
}
