package rbac

import (
	"context"
	"fmt"

	"github.com/vagaflow/vagaflow/internal/observability"
	"github.com/vagaflow/vagaflow/internal/platform/httpx"
)

var (
	// ErrAssignmentNotFound indicates the assignment id is unknown.
	ErrAssignmentNotFound = fmt.Errorf("rbac: assignment: %w", httpx.ErrNotFound)
	// ErrInvalidRole indicates a role name outside the closed enumeration.
	ErrInvalidRole = fmt.Errorf("rbac: invalid role: %w", httpx.ErrValidation)
)

// Service is the authorization gate plus the role assignment store. All
// answers are company-scoped: holding a role in one company grants nothing
// in another.
type Service struct {
	repo    Repository
	metrics *observability.Metrics
}

// NewService constructs a Service.
func NewService(repo Repository, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, metrics: metrics}
}

// HasPermission reports whether any active role the user holds in the
// company grants the permission. This is a pure OR over roles: one
// qualifying role suffices and nothing can subtract from another role's
// grant. A user or company with no active assignments yields false, never
// an error; only storage faults propagate.
func (s *Service) HasPermission(ctx context.Context, userID, companyID int64, perm Permission) (bool, error) {
	allowed, err := s.repo.HasGrant(ctx, userID, companyID, perm)
	if err != nil {
		return false, fmt.Errorf("rbac: has grant: %w", err)
	}
	s.metrics.ObserveAuthzDecision(allowed)
	return allowed, nil
}

// PermissionsFor returns the deduplicated union of permissions the user
// holds in the company across all active roles.
func (s *Service) PermissionsFor(ctx context.Context, userID, companyID int64) ([]Permission, error) {
	perms, err := s.repo.GrantedPermissions(ctx, userID, companyID)
	if err != nil {
		return nil, fmt.Errorf("rbac: granted permissions: %w", err)
	}
	if perms == nil {
		perms = []Permission{}
	}
	return perms, nil
}

// GrantsFor returns the currently granted permission set of a role. An
// unknown role yields an empty set, not an error.
func (s *Service) GrantsFor(ctx context.Context, role Role) ([]Permission, error) {
	perms, err := s.repo.RoleGrants(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("rbac: role grants: %w", err)
	}
	if perms == nil {
		perms = []Permission{}
	}
	return perms, nil
}

// ReseedDefaults replaces every grant row with the canonical matrix. The
// swap happens in a single transaction, so concurrent permission checks see
// either the old or the new matrix in full. Idempotent; customized grants
// are discarded, which is why the handler restricts this to global admins.
func (s *Service) ReseedDefaults(ctx context.Context) error {
	var grants []Grant
	for _, role := range Roles() {
		for _, perm := range DefaultGrantsFor(role) {
			grants = append(grants, Grant{Role: role, Permission: perm, IsGranted: true})
		}
	}
	if err := s.repo.ReplaceAllGrants(ctx, grants); err != nil {
		return fmt.Errorf("rbac: reseed defaults: %w", err)
	}
	return nil
}

// Assign records that the user holds the role in the company, optionally
// narrowed to a cost center. Existing identical assignments are not
// deduplicated; the union in HasPermission makes duplicates harmless.
func (s *Service) Assign(ctx context.Context, userID, companyID int64, role Role, costCenterID *int64) (Assignment, error) {
	if _, ok := ParseRole(string(role)); !ok {
		return Assignment{}, ErrInvalidRole
	}
	a, err := s.repo.InsertAssignment(ctx, Assignment{
		UserID:       userID,
		CompanyID:    companyID,
		Role:         role,
		CostCenterID: costCenterID,
	})
	if err != nil {
		return Assignment{}, fmt.Errorf("rbac: insert assignment: %w", err)
	}
	return a, nil
}

// Deactivate soft-deletes every assignment the user holds in the company.
// Subsequent checks fall back to whatever other companies still grant.
func (s *Service) Deactivate(ctx context.Context, userID, companyID int64) error {
	if err := s.repo.DeactivateAssignments(ctx, userID, companyID); err != nil {
		return fmt.Errorf("rbac: deactivate assignments: %w", err)
	}
	return nil
}

// ListActive returns the user's active assignments, optionally narrowed to
// one company.
func (s *Service) ListActive(ctx context.Context, userID int64, companyID *int64) ([]Assignment, error) {
	assignments, err := s.repo.ListActiveAssignments(ctx, userID, companyID)
	if err != nil {
		return nil, fmt.Errorf("rbac: list assignments: %w", err)
	}
	return assignments, nil
}

// GetAssignment fetches one assignment by id.
func (s *Service) GetAssignment(ctx context.Context, id int64) (Assignment, error) {
	return s.repo.GetAssignment(ctx, id)
}

// UpdateRole changes the role on an existing assignment. The caller is
// responsible for checking manage_permissions in the assignment's company
// before invoking this.
func (s *Service) UpdateRole(ctx context.Context, assignmentID int64, newRole Role) (Assignment, error) {
	if _, ok := ParseRole(string(newRole)); !ok {
		return Assignment{}, ErrInvalidRole
	}
	a, err := s.repo.SetAssignmentRole(ctx, assignmentID, newRole)
	if err != nil {
		return Assignment{}, err
	}
	return a, nil
}
