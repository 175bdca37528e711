// Package notify abstracts the "tell a user about a task" capability.
// Delivery (email, Slack, push) belongs to the surrounding application; the
// engine only decides when a notification is warranted.
package notify

import (
	"context"
	"log/slog"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// Notifier is invoked once when a task is created and assigned through the
// coordinator role. It must not fire for routine internal mutations.
type Notifier interface {
	TaskAssigned(ctx context.Context, userID, taskID string, eventType domain.CaseEventType) error
}

// LogNotifier writes notifications to the structured log. It stands in for
// real delivery in local and test deployments.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// TaskAssigned logs the notification.
func (n *LogNotifier) TaskAssigned(_ context.Context, userID, taskID string, eventType domain.CaseEventType) error {
	slog.Info("task assignment notification",
		"user_id", userID, "task_id", taskID, "event_type", string(eventType))
	return nil
}
