// Package metrics registers the Prometheus instruments for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	CaseEventsDetected    *prometheus.CounterVec
	TasksCreated          prometheus.Counter
	LifecycleActions      *prometheus.CounterVec
	TaskEventsSynthesized *prometheus.CounterVec
	TriggersSkipped       *prometheus.CounterVec
	ProcessingFailures    *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return newWith(prometheus.DefaultRegisterer)
}

// NewForTest creates metrics on a throwaway registry so parallel tests do not
// collide on duplicate registration.
func NewForTest() *Metrics {
	return newWith(prometheus.NewRegistry())
}

func newWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CaseEventsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caseflow_case_events_total",
			Help: "Case events detected, by event type.",
		}, []string{"type"}),
		TasksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "caseflow_tasks_created_total",
			Help: "Tasks created from matched triggers.",
		}),
		LifecycleActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caseflow_lifecycle_actions_total",
			Help: "Task lifecycle transitions applied, by action.",
		}, []string{"action"}),
		TaskEventsSynthesized: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caseflow_task_events_total",
			Help: "Task events synthesized from change records, by type.",
		}, []string{"type"}),
		TriggersSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caseflow_triggers_skipped_total",
			Help: "Matched triggers skipped without creating tasks, by reason.",
		}, []string{"reason"}),
		ProcessingFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caseflow_processing_failures_total",
			Help: "Event processing failures that will be retried, by stream.",
		}, []string{"stream"}),
	}
}
