package vacancies

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
	"github.com/vagaflow/vagaflow/internal/professions"
	"github.com/vagaflow/vagaflow/internal/rbac"
	"github.com/vagaflow/vagaflow/internal/shared"
)

// memoryRepo mirrors the SQL repository semantics in memory, including the
// query-layer status exclusion with pagination.
type memoryRepo struct {
	vacancies map[int64]Vacancy
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{vacancies: make(map[int64]Vacancy)}
}

func (r *memoryRepo) Create(_ context.Context, v Vacancy) (Vacancy, error) {
	r.nextID++
	v.ID = r.nextID
	v.UpdatedAt = v.CreatedAt
	r.vacancies[v.ID] = v
	return v, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Vacancy, error) {
	v, ok := r.vacancies[id]
	if !ok {
		return Vacancy{}, httpx.ErrNotFound
	}
	return v, nil
}

func (r *memoryRepo) Update(_ context.Context, v Vacancy) (Vacancy, error) {
	stored, ok := r.vacancies[v.ID]
	if !ok {
		return Vacancy{}, httpx.ErrNotFound
	}
	// Fixed-at-creation columns stay untouched, as in the SQL statement.
	v.CompanyID = stored.CompanyID
	v.SLADeadline = stored.SLADeadline
	v.CreatedBy = stored.CreatedBy
	v.CreatedAt = stored.CreatedAt
	v.Status = stored.Status
	r.vacancies[v.ID] = v
	return v, nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id int64, status Status) (Vacancy, error) {
	v, ok := r.vacancies[id]
	if !ok {
		return Vacancy{}, httpx.ErrNotFound
	}
	v.Status = status
	r.vacancies[id] = v
	return v, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.vacancies[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.vacancies, id)
	return nil
}

func (r *memoryRepo) List(_ context.Context, filter ListFilter) ([]Vacancy, int, error) {
	var out []Vacancy
	for id := int64(1); id <= r.nextID; id++ {
		v, ok := r.vacancies[id]
		if !ok {
			continue
		}
		if filter.CompanyID != nil && v.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		excluded := false
		for _, s := range filter.excludeStatuses {
			if v.Status == s {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		out = append(out, v)
	}
	return out, len(out), nil
}

func (r *memoryRepo) ListOverdue(_ context.Context, now time.Time, limit int) ([]Vacancy, error) {
	var out []Vacancy
	for id := int64(1); id <= r.nextID; id++ {
		v, ok := r.vacancies[id]
		if !ok || v.Status.Terminal() {
			continue
		}
		if v.SLADeadline.Before(now) {
			out = append(out, v)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ Repository = (*memoryRepo)(nil)

// stubAuthz grants permissions listed per (user, company) pair.
type stubAuthz struct {
	grants map[int64]map[int64][]rbac.Permission
	err    error
}

func (s *stubAuthz) HasPermission(_ context.Context, userID, companyID int64, perm rbac.Permission) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, p := range s.grants[userID][companyID] {
		if p == perm {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubAuthz) grant(userID, companyID int64, perms ...rbac.Permission) {
	if s.grants == nil {
		s.grants = make(map[int64]map[int64][]rbac.Permission)
	}
	if s.grants[userID] == nil {
		s.grants[userID] = make(map[int64][]rbac.Permission)
	}
	s.grants[userID][companyID] = append(s.grants[userID][companyID], perms...)
}

type stubCatalog struct {
	professions map[int64]professions.Profession
}

func (s *stubCatalog) Get(_ context.Context, id int64) (professions.Profession, error) {
	p, ok := s.professions[id]
	if !ok {
		return professions.Profession{}, httpx.ErrNotFound
	}
	return p, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *stubAuthz) {
	t.Helper()
	repo := newMemoryRepo()
	authz := &stubAuthz{}
	catalog := &stubCatalog{professions: map[int64]professions.Profession{
		10: {ID: 10, Name: "Electrician", IsActive: true},
		11: {ID: 11, Name: "Welder", IsActive: false},
	}}
	svc := NewService(repo, authz, catalog)
	return svc, repo, authz
}

func ident(userID int64, globalRole string) shared.Identity {
	return shared.Identity{UserID: userID, GlobalRole: globalRole}
}

func TestCreateFixesSLADeadline(t *testing.T) {
	svc, _, authz := newTestService(t)
	authz.grant(1, 2, rbac.PermCreateJobs)

	createdAt := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return createdAt }

	v, err := svc.Create(context.Background(), ident(1, "viewer"), CreateVacancyRequest{
		CompanyID:    2,
		ProfessionID: 10,
		Title:        "Shift electrician",
	})
	require.NoError(t, err)
	require.Equal(t, createdAt.Add(14*24*time.Hour), v.SLADeadline)
	require.Equal(t, StatusDraft, v.Status)
	require.Equal(t, int64(1), v.CreatedBy)
}

func TestCreateForbiddenWithoutPermission(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Create(context.Background(), ident(1, "viewer"), CreateVacancyRequest{
		CompanyID:    2,
		ProfessionID: 10,
		Title:        "Shift electrician",
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Empty(t, repo.vacancies)
}

func TestCreateInactiveProfessionNoWrite(t *testing.T) {
	svc, repo, authz := newTestService(t)
	authz.grant(1, 2, rbac.PermCreateJobs)

	_, err := svc.Create(context.Background(), ident(1, "viewer"), CreateVacancyRequest{
		CompanyID:    2,
		ProfessionID: 11,
		Title:        "Welder",
	})
	require.ErrorIs(t, err, ErrInvalidReference)
	require.Empty(t, repo.vacancies, "failed validation must not write")
}

func TestCreateUnknownProfessionNoWrite(t *testing.T) {
	svc, repo, authz := newTestService(t)
	authz.grant(1, 2, rbac.PermCreateJobs)

	_, err := svc.Create(context.Background(), ident(1, "viewer"), CreateVacancyRequest{
		CompanyID:    2,
		ProfessionID: 999,
		Title:        "Ghost",
	})
	require.ErrorIs(t, err, ErrInvalidReference)
	require.Empty(t, repo.vacancies)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc, _, authz := newTestService(t)
	authz.grant(1, 2, rbac.PermCreateJobs)

	_, err := svc.Create(context.Background(), ident(1, "viewer"), CreateVacancyRequest{
		CompanyID:    2,
		ProfessionID: 10,
		Title:        "Shift electrician",
		Status:       "archived",
	})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func mustCreate(t *testing.T, svc *Service, authz *stubAuthz, userID, companyID int64, status Status) Vacancy {
	t.Helper()
	authz.grant(userID, companyID, rbac.PermCreateJobs)
	v, err := svc.Create(context.Background(), ident(userID, "viewer"), CreateVacancyRequest{
		CompanyID:    companyID,
		ProfessionID: 10,
		Title:        "Posting",
		Status:       status.String(),
	})
	require.NoError(t, err)
	return v
}

func TestUpdateCannotChangeCompany(t *testing.T) {
	svc, repo, authz := newTestService(t)
	v := mustCreate(t, svc, authz, 1, 2, StatusAberto)
	authz.grant(1, 2, rbac.PermEditJobs)

	// A raw payload smuggling company_id decodes with the field dropped,
	// and the repository never writes the column either way.
	var req UpdateVacancyRequest
	raw := []byte(`{"company_id": 99, "title": "Renamed"}`)
	require.NoError(t, json.Unmarshal(raw, &req))

	updated, err := svc.Update(context.Background(), ident(1, "viewer"), v.ID, req)
	require.NoError(t, err)
	require.Equal(t, int64(2), updated.CompanyID)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, int64(2), repo.vacancies[v.ID].CompanyID)
}

func TestUpdateResolvesCompanyFromStorage(t *testing.T) {
	svc, _, authz := newTestService(t)
	v := mustCreate(t, svc, authz, 1, 2, StatusAberto)
	// edit_jobs granted in a different company only.
	authz.grant(1, 3, rbac.PermEditJobs)

	title := "Renamed"
	_, err := svc.Update(context.Background(), ident(1, "viewer"), v.ID, UpdateVacancyRequest{Title: &title})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateStatusValidatesEnum(t *testing.T) {
	svc, _, authz := newTestService(t)
	v := mustCreate(t, svc, authz, 1, 2, StatusAberto)
	authz.grant(1, 2, rbac.PermEditJobs)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, ident(1, "viewer"), v.ID, "bogus")
	require.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := svc.UpdateStatus(ctx, ident(1, "viewer"), v.ID, "em_recrutamento")
	require.NoError(t, err)
	require.Equal(t, StatusEmRecrutamento, updated.Status)
	require.Equal(t, v.SLADeadline, updated.SLADeadline, "status change must not recompute the deadline")
}

func TestUpdateStatusUnknownJob(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.UpdateStatus(context.Background(), ident(1, "viewer"), 404, "aberto")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteRequiresDeleteJobs(t *testing.T) {
	svc, repo, authz := newTestService(t)
	v := mustCreate(t, svc, authz, 1, 2, StatusAberto)
	ctx := context.Background()

	err := svc.Delete(ctx, ident(1, "viewer"), v.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	authz.grant(1, 2, rbac.PermDeleteJobs)
	require.NoError(t, svc.Delete(ctx, ident(1, "viewer"), v.ID))
	require.Empty(t, repo.vacancies)
}

func TestListRecruiterVisibilityFilter(t *testing.T) {
	svc, _, authz := newTestService(t)
	mustCreate(t, svc, authz, 1, 2, StatusAberto)
	mustCreate(t, svc, authz, 1, 2, StatusAprovada)
	inPipeline := mustCreate(t, svc, authz, 1, 2, StatusEmRecrutamento)
	authz.grant(5, 2, rbac.PermViewJobs)
	ctx := context.Background()
	companyID := int64(2)

	items, total, err := svc.List(ctx, ident(5, "recruiter"), ListFilter{CompanyID: &companyID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, items, 1)
	require.Equal(t, inPipeline.ID, items[0].ID)

	items, total, err = svc.List(ctx, ident(9, "admin"), ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, items, 3)
}

func TestListRequiresCompanyForNonAdmins(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, _, err := svc.List(context.Background(), ident(5, "recruiter"), ListFilter{})
	require.ErrorIs(t, err, ErrCompanyRequired)
}

func TestListRequiresViewPermission(t *testing.T) {
	svc, _, authz := newTestService(t)
	mustCreate(t, svc, authz, 1, 2, StatusEmRecrutamento)
	companyID := int64(2)

	_, _, err := svc.List(context.Background(), ident(5, "recruiter"), ListFilter{CompanyID: &companyID})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestAuthorizerFaultIsNotForbidden(t *testing.T) {
	svc, _, authz := newTestService(t)
	authz.err = context.DeadlineExceeded

	_, err := svc.Create(context.Background(), ident(1, "viewer"), CreateVacancyRequest{
		CompanyID:    2,
		ProfessionID: 10,
		Title:        "Posting",
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, httpx.ErrForbidden, "storage faults must surface as 500, not 403")
}
