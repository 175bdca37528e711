package dto

import (
	"time"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID            string     `json:"id"`
	CaseID        string     `json:"case_id"`
	TemplateID    *string    `json:"template_id"`
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	OwnerID       *string    `json:"owner_id"`
	AssignedToID  *string    `json:"assigned_to_id"`
	IsOpen        bool       `json:"is_open"`
	IsSuspended   bool       `json:"is_suspended"`
	PrevOwnerRole *string    `json:"prev_owner_role"`
	IsUrgent      bool       `json:"is_urgent"`
	DueAt         *time.Time `json:"due_at"`
	ClosedAt      *time.Time `json:"closed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TasksListResponse represents the response for GET /cases/{id}/tasks.
type TasksListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// ActivityEntry is one entry in a task's merged activity feed.
type ActivityEntry struct {
	Kind      string            `json:"kind"`
	ID        string            `json:"id"`
	ActorID   *string           `json:"actor_id"`
	Type      string            `json:"type,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Note      string            `json:"note,omitempty"`
	Text      string            `json:"text,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// ActivityResponse represents the response for GET /tasks/{id}/events.
type ActivityResponse struct {
	Activity []ActivityEntry `json:"activity"`
}

// ToTaskResponse converts domain.Task to TaskResponse.
func ToTaskResponse(task *domain.Task) TaskResponse {
	var prevRole *string
	if task.PrevOwnerRole != nil {
		s := string(*task.PrevOwnerRole)
		prevRole = &s
	}
	return TaskResponse{
		ID:            task.ID,
		CaseID:        task.CaseID,
		TemplateID:    task.TemplateID,
		Type:          task.Type,
		Name:          task.Name,
		Description:   task.Description,
		Status:        string(task.Status),
		OwnerID:       task.OwnerID,
		AssignedToID:  task.AssignedToID,
		IsOpen:        task.IsOpen,
		IsSuspended:   task.IsSuspended,
		PrevOwnerRole: prevRole,
		IsUrgent:      task.IsUrgent,
		DueAt:         task.DueAt,
		ClosedAt:      task.ClosedAt,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

// ToActivityEntry converts a domain.TaskActivity entry.
func ToActivityEntry(activity domain.TaskActivity) ActivityEntry {
	switch activity.Kind {
	case domain.ActivityComment:
		return ActivityEntry{
			Kind:      string(domain.ActivityComment),
			ID:        activity.Comment.ID,
			ActorID:   activity.Comment.AuthorID,
			Text:      activity.Comment.Text,
			CreatedAt: activity.Comment.CreatedAt,
		}
	case domain.ActivityEvent:
		return ActivityEntry{
			Kind:      string(domain.ActivityEvent),
			ID:        activity.Event.ID,
			ActorID:   activity.Event.ActorID,
			Type:      string(activity.Event.Type),
			Data:      activity.Event.Data,
			Note:      activity.Event.Note,
			Text:      activity.Event.Description,
			CreatedAt: activity.Event.CreatedAt,
		}
	}
	return ActivityEntry{}
}
