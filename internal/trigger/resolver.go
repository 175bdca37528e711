package trigger

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/store"
)

// RoleResolver maps a case role to the user currently filling it. Paralegal
// and lawyer come straight off the case snapshot; coordinator is a configured
// well-known account rather than a per-case field.
type RoleResolver struct {
	coordinatorID string
	users         store.UserStore
}

// NewRoleResolver creates a resolver. An empty coordinatorID means no
// coordinator account is configured; coordinator-role triggers will then be
// skipped rather than failing event processing.
func NewRoleResolver(coordinatorID string, users store.UserStore) *RoleResolver {
	return &RoleResolver{coordinatorID: coordinatorID, users: users}
}

// Resolve returns the user id for the role on the given case, or nil when
// the role is unfilled or unresolvable.
func (r *RoleResolver) Resolve(ctx context.Context, c domain.CaseSnapshot, role domain.CaseRole) (*string, error) {
	switch role {
	case domain.RoleParalegal, domain.RoleLawyer:
		return c.RoleOf(role), nil
	case domain.RoleCoordinator:
		if r.coordinatorID == "" {
			return nil, nil
		}
		user, err := r.users.GetByID(ctx, r.coordinatorID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("look up coordinator account: %w", err)
		}
		if !user.IsActive {
			return nil, nil
		}
		return &user.ID, nil
	default:
		return nil, fmt.Errorf("unknown case role %q", role)
	}
}

// IsLawyer reports whether the user belongs to the lawyer group.
func (r *RoleResolver) IsLawyer(ctx context.Context, userID string) (bool, error) {
	return r.users.IsLawyer(ctx, userID)
}
