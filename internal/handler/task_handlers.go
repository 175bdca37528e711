package handler

import (
	"net/http"
	"sort"

	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/handler/dto"
)

// handleListCaseTasks lists every task created for a case, newest first.
func (h *Handler) handleListCaseTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caseID, ok := extractID(w, r, "case id")
	if !ok {
		return
	}

	tasks, err := h.tasks.ListByCase(ctx, caseID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	resp := dto.TasksListResponse{
		Tasks: make([]dto.TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, dto.ToTaskResponse(task))
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleTaskActivity returns a task's merged activity feed: synthesized
// events and comments interleaved in chronological order.
func (h *Handler) handleTaskActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractID(w, r, "task id")
	if !ok {
		return
	}

	// 404 for unknown tasks rather than an empty feed.
	if _, err := h.tasks.GetByID(ctx, taskID); err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	events, err := h.events.ListByTask(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}
	comments, err := h.comments.ListByTask(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	activity := make([]domain.TaskActivity, 0, len(events)+len(comments))
	for _, event := range events {
		activity = append(activity, domain.TaskActivity{Kind: domain.ActivityEvent, Event: event})
	}
	for _, comment := range comments {
		activity = append(activity, domain.TaskActivity{Kind: domain.ActivityComment, Comment: comment})
	}
	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].At().Before(activity[j].At())
	})

	resp := dto.ActivityResponse{
		Activity: make([]dto.ActivityEntry, 0, len(activity)),
	}
	for _, entry := range activity {
		resp.Activity = append(resp.Activity, dto.ToActivityEntry(entry))
	}

	respondJSON(w, http.StatusOK, resp)
}
