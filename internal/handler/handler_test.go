package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/handler"
	"github.com/AnikaLegal/caseflow/internal/handler/dto"
	"github.com/AnikaLegal/caseflow/internal/store/memory"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func strPtr(s string) *string { return &s }

func newServer(t *testing.T) (*httptest.Server, *memory.TaskStore, *memory.TaskEventStore, *memory.TaskCommentStore) {
	t.Helper()
	tasks := memory.NewTaskStore()
	events := memory.NewTaskEventStore()
	comments := memory.NewTaskCommentStore()

	mux := http.NewServeMux()
	handler.New(okPinger{}, tasks, events, comments).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, tasks, events, comments
}

func TestHealthz(t *testing.T) {
	server, _, _, _ := newServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListCaseTasks(t *testing.T) {
	server, tasks, _, _ := newServer(t)
	caseID := uuid.NewString()

	owner := "para-1"
	require.NoError(t, tasks.Create(context.Background(), &domain.Task{
		ID:           uuid.NewString(),
		CaseID:       caseID,
		TemplateID:   strPtr("tpl-1"),
		Type:         "Follow up",
		Name:         "Follow up",
		Status:       domain.TaskStatusNotStarted,
		OwnerID:      &owner,
		AssignedToID: &owner,
		IsOpen:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}))

	resp, err := http.Get(server.URL + "/api/v1/cases/" + caseID + "/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.TasksListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Tasks, 1)
	assert.Equal(t, caseID, body.Tasks[0].CaseID)
	assert.Equal(t, "Follow up", body.Tasks[0].Name)
	assert.Equal(t, "para-1", *body.Tasks[0].OwnerID)
}

func TestListCaseTasks_InvalidID(t *testing.T) {
	server, _, _, _ := newServer(t)

	resp, err := http.Get(server.URL + "/api/v1/cases/not-a-uuid/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTaskActivity_MergesEventsAndComments(t *testing.T) {
	server, tasks, events, comments := newServer(t)
	ctx := context.Background()
	taskID := uuid.NewString()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, tasks.Create(ctx, &domain.Task{
		ID: taskID, CaseID: uuid.NewString(), Type: "Follow up", Name: "Follow up",
		Status: domain.TaskStatusNotStarted, IsOpen: true, CreatedAt: base, UpdatedAt: base,
	}))
	require.NoError(t, events.Append(ctx, &domain.TaskEvent{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		Type:        domain.TaskEventStatusChanged,
		Data:        map[string]string{domain.DataOldStatus: "NOT_STARTED", domain.DataNewStatus: "IN_PROGRESS"},
		Description: "Status changed from NOT_STARTED to IN_PROGRESS.",
		CreatedAt:   base.Add(2 * time.Minute),
	}))
	require.NoError(t, comments.Append(ctx, &domain.TaskComment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		Text:      "Kicking this off.",
		CreatedAt: base.Add(time.Minute),
	}))

	resp, err := http.Get(server.URL + "/api/v1/tasks/" + taskID + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.ActivityResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Activity, 2)
	assert.Equal(t, "comment", body.Activity[0].Kind)
	assert.Equal(t, "Kicking this off.", body.Activity[0].Text)
	assert.Equal(t, "event", body.Activity[1].Kind)
	assert.Equal(t, string(domain.TaskEventStatusChanged), body.Activity[1].Type)
}

func TestTaskActivity_UnknownTask(t *testing.T) {
	server, _, _, _ := newServer(t)

	resp, err := http.Get(server.URL + "/api/v1/tasks/" + uuid.NewString() + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "TASK_NOT_FOUND", body.Error.Code)
}
