package applications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
	"github.com/vagaflow/vagaflow/internal/rbac"
	"github.com/vagaflow/vagaflow/internal/shared"
	"github.com/vagaflow/vagaflow/internal/vacancies"
)

type memoryRepo struct {
	applications map[int64]Application
	nextID       int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{applications: make(map[int64]Application)}
}

func (r *memoryRepo) Create(_ context.Context, a Application) (Application, error) {
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.applications[a.ID] = a
	return a, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Application, error) {
	a, ok := r.applications[id]
	if !ok {
		return Application{}, httpx.ErrNotFound
	}
	return a, nil
}

func (r *memoryRepo) MoveStage(_ context.Context, id int64, stage Stage) (Application, error) {
	a, ok := r.applications[id]
	if !ok {
		return Application{}, httpx.ErrNotFound
	}
	a.Stage = stage
	r.applications[id] = a
	return a, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.applications[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.applications, id)
	return nil
}

func (r *memoryRepo) ListByVacancy(_ context.Context, vacancyID int64) ([]Application, error) {
	var out []Application
	for id := int64(1); id <= r.nextID; id++ {
		a, ok := r.applications[id]
		if ok && a.VacancyID == vacancyID {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ Repository = (*memoryRepo)(nil)

type stubAuthz struct {
	grants map[int64]map[int64][]rbac.Permission
}

func (s *stubAuthz) HasPermission(_ context.Context, userID, companyID int64, perm rbac.Permission) (bool, error) {
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

type stubPostings struct {
	postings map[int64]vacancies.Vacancy
}

func (s *stubPostings) Get(_ context.Context, id int64) (vacancies.Vacancy, error) {
	v, ok := s.postings[id]
	if !ok {
		return vacancies.Vacancy{}, httpx.ErrNotFound
	}
	return v, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *stubAuthz) {
	t.Helper()
	repo := newMemoryRepo()
	authz := &stubAuthz{}
	postings := &stubPostings{postings: map[int64]vacancies.Vacancy{
		7: {ID: 7, CompanyID: 2, Status: vacancies.StatusEmRecrutamento},
	}}
	return NewService(repo, authz, postings), repo, authz
}

func ident(userID int64) shared.Identity {
	return shared.Identity{UserID: userID, GlobalRole: "viewer"}
}

func TestCreateStartsAtTriagem(t *testing.T) {
	svc, _, authz := newTestService(t)
	authz.grant(1, 2, rbac.PermManageApplications)

	a, err := svc.Create(context.Background(), ident(1), CreateApplicationRequest{
		VacancyID:      7,
		CandidateName:  "Maria Souza",
		CandidateEmail: "maria@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, StageTriagem, a.Stage)
	require.Equal(t, int64(7), a.VacancyID)
}

func TestCreateScopesToPostingCompany(t *testing.T) {
	svc, repo, authz := newTestService(t)
	// manage_applications held in company 3, posting belongs to company 2.
	authz.grant(1, 3, rbac.PermManageApplications)

	_, err := svc.Create(context.Background(), ident(1), CreateApplicationRequest{
		VacancyID:      7,
		CandidateName:  "Maria Souza",
		CandidateEmail: "maria@example.com",
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Empty(t, repo.applications)
}

func TestCreateUnknownPosting(t *testing.T) {
	svc, _, authz := newTestService(t)
	authz.grant(1, 2, rbac.PermManageApplications)

	_, err := svc.Create(context.Background(), ident(1), CreateApplicationRequest{
		VacancyID:      404,
		CandidateName:  "Maria Souza",
		CandidateEmail: "maria@example.com",
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestMoveStage(t *testing.T) {
	svc, _, authz := newTestService(t)
	authz.grant(1, 2, rbac.PermManageApplications)
	ctx := context.Background()

	a, err := svc.Create(ctx, ident(1), CreateApplicationRequest{
		VacancyID:      7,
		CandidateName:  "Maria Souza",
		CandidateEmail: "maria@example.com",
	})
	require.NoError(t, err)

	moved, err := svc.MoveStage(ctx, ident(1), a.ID, "entrevista")
	require.NoError(t, err)
	require.Equal(t, StageEntrevista, moved.Stage)

	_, err = svc.MoveStage(ctx, ident(1), a.ID, "arquivada")
	require.ErrorIs(t, err, ErrInvalidStage)
}

func TestViewRequiresViewApplications(t *testing.T) {
	svc, _, authz := newTestService(t)
	authz.grant(1, 2, rbac.PermManageApplications)
	ctx := context.Background()

	a, err := svc.Create(ctx, ident(1), CreateApplicationRequest{
		VacancyID:      7,
		CandidateName:  "Maria Souza",
		CandidateEmail: "maria@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, ident(5), a.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	authz.grant(5, 2, rbac.PermViewApplications)
	got, err := svc.Get(ctx, ident(5), a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	board, err := svc.ListByVacancy(ctx, ident(5), 7)
	require.NoError(t, err)
	require.Len(t, board, 1)
}

func TestDelete(t *testing.T) {
	svc, repo, authz := newTestService(t)
	authz.grant(1, 2, rbac.PermManageApplications)
	ctx := context.Background()

	a, err := svc.Create(ctx, ident(1), CreateApplicationRequest{
		VacancyID:      7,
		CandidateName:  "Maria Souza",
		CandidateEmail: "maria@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ident(1), a.ID))
	require.Empty(t, repo.applications)
	require.ErrorIs(t, svc.Delete(ctx, ident(1), a.ID), httpx.ErrNotFound)
}
