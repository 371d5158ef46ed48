package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory Repository with the same union semantics as
// the SQL implementation.
type memoryRepo struct {
	assignments []Assignment
	grants      []Grant
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{}
}

func (r *memoryRepo) InsertAssignment(_ context.Context, a Assignment) (Assignment, error) {
	r.nextID++
	a.ID = r.nextID
	a.IsActive = true
	r.assignments = append(r.assignments, a)
	return a, nil
}

func (r *memoryRepo) GetAssignment(_ context.Context, id int64) (Assignment, error) {
	for _, a := range r.assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return Assignment{}, ErrAssignmentNotFound
}

func (r *memoryRepo) ListActiveAssignments(_ context.Context, userID int64, companyID *int64) ([]Assignment, error) {
	var out []Assignment
	for _, a := range r.assignments {
		if !a.IsActive || a.UserID != userID {
			continue
		}
		if companyID != nil && a.CompanyID != *companyID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *memoryRepo) DeactivateAssignments(_ context.Context, userID, companyID int64) error {
	for i, a := range r.assignments {
		if a.UserID == userID && a.CompanyID == companyID {
			r.assignments[i].IsActive = false
		}
	}
	return nil
}

func (r *memoryRepo) SetAssignmentRole(_ context.Context, id int64, role Role) (Assignment, error) {
	for i, a := range r.assignments {
		if a.ID == id {
			r.assignments[i].Role = role
			return r.assignments[i], nil
		}
	}
	return Assignment{}, ErrAssignmentNotFound
}

func (r *memoryRepo) HasGrant(ctx context.Context, userID, companyID int64, perm Permission) (bool, error) {
	perms, err := r.GrantedPermissions(ctx, userID, companyID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p == perm {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) GrantedPermissions(_ context.Context, userID, companyID int64) ([]Permission, error) {
	roles := make(map[Role]struct{})
	for _, a := range r.assignments {
		if a.IsActive && a.UserID == userID && a.CompanyID == companyID {
			roles[a.Role] = struct{}{}
		}
	}
	seen := make(map[Permission]struct{})
	var out []Permission
	for _, g := range r.grants {
		if !g.IsGranted {
			continue
		}
		if _, ok := roles[g.Role]; !ok {
			continue
		}
		if _, dup := seen[g.Permission]; dup {
			continue
		}
		seen[g.Permission] = struct{}{}
		out = append(out, g.Permission)
	}
	return out, nil
}

func (r *memoryRepo) RoleGrants(_ context.Context, role Role) ([]Permission, error) {
	var out []Permission
	for _, g := range r.grants {
		if g.Role == role && g.IsGranted {
			out = append(out, g.Permission)
		}
	}
	return out, nil
}

func (r *memoryRepo) ReplaceAllGrants(_ context.Context, grants []Grant) error {
	r.grants = append([]Grant(nil), grants...)
	return nil
}

var _ Repository = (*memoryRepo)(nil)

func newSeededService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	require.NoError(t, svc.ReseedDefaults(context.Background()))
	return svc, repo
}

func TestHasPermissionWithoutAssignments(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	for _, perm := range Permissions() {
		allowed, err := svc.HasPermission(ctx, 1, 1, perm)
		require.NoError(t, err)
		require.False(t, allowed, perm)
	}
}

func TestHasPermissionMatchesRoleGrants(t *testing.T) {
	ctx := context.Background()

	for _, role := range Roles() {
		svc, _ := newSeededService(t)
		_, err := svc.Assign(ctx, 7, 3, role, nil)
		require.NoError(t, err)

		granted, err := svc.GrantsFor(ctx, role)
		require.NoError(t, err)
		grantedSet := make(map[Permission]struct{}, len(granted))
		for _, p := range granted {
			grantedSet[p] = struct{}{}
		}

		for _, perm := range Permissions() {
			allowed, err := svc.HasPermission(ctx, 7, 3, perm)
			require.NoError(t, err)
			_, want := grantedSet[perm]
			require.Equal(t, want, allowed, "role=%s perm=%s", role, perm)
		}
	}
}

func TestMultipleRolesGrantUnion(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	_, err := svc.Assign(ctx, 5, 2, RoleViewer, nil)
	require.NoError(t, err)
	_, err = svc.Assign(ctx, 5, 2, RoleInterviewer, nil)
	require.NoError(t, err)

	allowed, err := svc.HasPermission(ctx, 5, 2, PermViewJobs)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = svc.HasPermission(ctx, 5, 2, PermInterviewCandidates)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = svc.HasPermission(ctx, 5, 2, PermEditJobs)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestPermissionsAreCompanyScoped(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	_, err := svc.Assign(ctx, 5, 2, RoleAdmin, nil)
	require.NoError(t, err)

	allowed, err := svc.HasPermission(ctx, 5, 9, PermViewJobs)
	require.NoError(t, err)
	require.False(t, allowed, "role in company 2 must grant nothing in company 9")
}

func TestReseedDefaultsIdempotent(t *testing.T) {
	svc, repo := newSeededService(t)
	ctx := context.Background()

	first := append([]Grant(nil), repo.grants...)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.ReseedDefaults(ctx))
	}
	require.Equal(t, first, repo.grants)
}

func TestDeactivateFallsBackToRemainingAssignments(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	_, err := svc.Assign(ctx, 4, 1, RoleRecruiter, nil)
	require.NoError(t, err)
	_, err = svc.Assign(ctx, 4, 2, RoleViewer, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, 4, 1))

	allowed, err := svc.HasPermission(ctx, 4, 1, PermCreateJobs)
	require.NoError(t, err)
	require.False(t, allowed, "deactivated company must deny")

	allowed, err = svc.HasPermission(ctx, 4, 2, PermViewJobs)
	require.NoError(t, err)
	require.True(t, allowed, "other company stays active")
}

func TestDuplicateAssignmentsAreHarmless(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Assign(ctx, 6, 1, RoleViewer, nil)
		require.NoError(t, err)
	}
	perms, err := svc.PermissionsFor(ctx, 6, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, DefaultGrantsFor(RoleViewer), perms)
}

func TestUpdateRoleUnknownAssignment(t *testing.T) {
	svc, _ := newSeededService(t)

	_, err := svc.UpdateRole(context.Background(), 999, RoleViewer)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	a, err := svc.Assign(ctx, 1, 1, RoleViewer, nil)
	require.NoError(t, err)

	_, err = svc.UpdateRole(ctx, a.ID, Role("root"))
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestAssignRejectsUnknownRole(t *testing.T) {
	svc, _ := newSeededService(t)

	_, err := svc.Assign(context.Background(), 1, 1, Role("root"), nil)
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestCostCenterScopeIsAdvisory(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	costCenter := int64(44)
	_, err := svc.Assign(ctx, 8, 2, RoleViewer, &costCenter)
	require.NoError(t, err)

	// The restriction is recorded but not enforced by the gate.
	allowed, err := svc.HasPermission(ctx, 8, 2, PermViewJobs)
	require.NoError(t, err)
	require.True(t, allowed)
}
