// Package trigger matches case events against configured triggers and
// resolves which user each matched trigger assigns tasks to.
package trigger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/metrics"
	"github.com/AnikaLegal/caseflow/internal/store"
)

// Match pairs a fired trigger with the user its role resolved to.
type Match struct {
	Trigger    *domain.Trigger
	AssigneeID string
}

// Matcher finds the triggers that fire for a case event.
type Matcher struct {
	triggers store.TriggerStore
	resolver *RoleResolver
	metrics  *metrics.Metrics
}

// NewMatcher creates a Matcher.
func NewMatcher(triggers store.TriggerStore, resolver *RoleResolver, m *metrics.Metrics) *Matcher {
	return &Matcher{triggers: triggers, resolver: resolver, metrics: m}
}

// Match returns the triggers that fire for the event, each paired with its
// resolved assignee.
//
// Policy edge cases, preserved from observed behaviour:
//   - removal events (a role cleared with no replacement) evaluate nothing;
//   - paralegal-role triggers are skipped entirely when the case's paralegal
//     is also in the lawyer group, to avoid assigning the same person twice;
//   - triggers whose role cannot be resolved are skipped and logged, other
//     matches still apply.
func (m *Matcher) Match(ctx context.Context, event domain.CaseEvent) ([]Match, error) {
	if event.IsRemoval() {
		return nil, nil
	}

	candidates, err := m.triggers.FindMatching(ctx, event.Case.Topic, event.Type)
	if err != nil {
		return nil, fmt.Errorf("find matching triggers: %w", err)
	}

	skipParalegal, err := m.skipParalegalRole(ctx, event.Case)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, trg := range candidates {
		if !trg.Matches(event) {
			continue
		}
		if skipParalegal && trg.Role == domain.RoleParalegal {
			slog.Info("skipping paralegal trigger, lawyer acting as paralegal",
				"trigger_id", trg.ID, "case_id", event.CaseID)
			m.metrics.TriggersSkipped.WithLabelValues("lawyer_as_paralegal").Inc()
			continue
		}
		assignee, err := m.resolver.Resolve(ctx, event.Case, trg.Role)
		if err != nil {
			return nil, fmt.Errorf("resolve role %s: %w", trg.Role, err)
		}
		if assignee == nil {
			slog.Warn("skipping trigger, role cannot be resolved",
				"trigger_id", trg.ID, "case_id", event.CaseID, "role", string(trg.Role))
			m.metrics.TriggersSkipped.WithLabelValues("unresolved_role").Inc()
			continue
		}
		matches = append(matches, Match{Trigger: trg, AssigneeID: *assignee})
	}
	return matches, nil
}

// skipParalegalRole reports whether paralegal-role triggers are suppressed
// for this case because its paralegal is a member of the lawyer group.
func (m *Matcher) skipParalegalRole(ctx context.Context, c domain.CaseSnapshot) (bool, error) {
	if c.ParalegalID == nil {
		return false, nil
	}
	isLawyer, err := m.resolver.IsLawyer(ctx, *c.ParalegalID)
	if err != nil {
		return false, fmt.Errorf("check lawyer group membership: %w", err)
	}
	return isLawyer, nil
}
