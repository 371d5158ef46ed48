package applications

import (
	"context"
	"fmt"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
	"github.com/vagaflow/vagaflow/internal/rbac"
	"github.com/vagaflow/vagaflow/internal/shared"
	"github.com/vagaflow/vagaflow/internal/vacancies"
)

// ErrInvalidStage indicates a stage outside the kanban enumeration.
var ErrInvalidStage = fmt.Errorf("applications: invalid stage: %w", httpx.ErrValidation)

// Authorizer answers company-scoped permission questions. Satisfied by
// rbac.Service.
type Authorizer interface {
	HasPermission(ctx context.Context, userID, companyID int64, perm rbac.Permission) (bool, error)
}

// PostingDirectory resolves a posting so the application can be scoped to
// its company. Satisfied by vacancies.PGRepository.
type PostingDirectory interface {
	Get(ctx context.Context, id int64) (vacancies.Vacancy, error)
}

// Service owns the candidate pipeline. Authorization always runs against
// the company of the application's posting, never against anything in the
// request body.
type Service struct {
	repo     Repository
	authz    Authorizer
	postings PostingDirectory
}

// NewService constructs a Service.
func NewService(repo Repository, authz Authorizer, postings PostingDirectory) *Service {
	return &Service{repo: repo, authz: authz, postings: postings}
}

// Create attaches a candidate to a posting at the triagem stage. Requires
// manage_applications in the posting's company.
func (s *Service) Create(ctx context.Context, ident shared.Identity, req CreateApplicationRequest) (Application, error) {
	posting, err := s.postings.Get(ctx, req.VacancyID)
	if err != nil {
		return Application{}, err
	}
	if err := s.require(ctx, ident, posting.CompanyID, rbac.PermManageApplications); err != nil {
		return Application{}, err
	}
	created, err := s.repo.Create(ctx, Application{
		VacancyID:      req.VacancyID,
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		Stage:          StageTriagem,
		Notes:          req.Notes,
	})
	if err != nil {
		return Application{}, fmt.Errorf("applications: create: %w", err)
	}
	return created, nil
}

// Get returns one application, gated on view_applications.
func (s *Service) Get(ctx context.Context, ident shared.Identity, id int64) (Application, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if err := s.authorizeForPosting(ctx, ident, a.VacancyID, rbac.PermViewApplications); err != nil {
		return Application{}, err
	}
	return a, nil
}

// ListByVacancy returns the kanban board of one posting, gated on
// view_applications in the posting's company.
func (s *Service) ListByVacancy(ctx context.Context, ident shared.Identity, vacancyID int64) ([]Application, error) {
	if err := s.authorizeForPosting(ctx, ident, vacancyID, rbac.PermViewApplications); err != nil {
		return nil, err
	}
	out, err := s.repo.ListByVacancy(ctx, vacancyID)
	if err != nil {
		return nil, fmt.Errorf("applications: list: %w", err)
	}
	if out == nil {
		out = []Application{}
	}
	return out, nil
}

// MoveStage moves a candidate to another column. Any stage is reachable
// from any other. Requires manage_applications.
func (s *Service) MoveStage(ctx context.Context, ident shared.Identity, id int64, rawStage string) (Application, error) {
	stage, ok := ParseStage(rawStage)
	if !ok {
		return Application{}, ErrInvalidStage
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if err := s.authorizeForPosting(ctx, ident, existing.VacancyID, rbac.PermManageApplications); err != nil {
		return Application{}, err
	}
	moved, err := s.repo.MoveStage(ctx, id, stage)
	if err != nil {
		return Application{}, fmt.Errorf("applications: move stage: %w", err)
	}
	return moved, nil
}

// Delete removes a candidate from the pipeline. Requires manage_applications.
func (s *Service) Delete(ctx context.Context, ident shared.Identity, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeForPosting(ctx, ident, existing.VacancyID, rbac.PermManageApplications); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("applications: delete: %w", err)
	}
	return nil
}

func (s *Service) authorizeForPosting(ctx context.Context, ident shared.Identity, vacancyID int64, perm rbac.Permission) error {
	posting, err := s.postings.Get(ctx, vacancyID)
	if err != nil {
		return err
	}
	return s.require(ctx, ident, posting.CompanyID, perm)
}

func (s *Service) require(ctx context.Context, ident shared.Identity, companyID int64, perm rbac.Permission) error {
	allowed, err := s.authz.HasPermission(ctx, ident.UserID, companyID, perm)
	if err != nil {
		return fmt.Errorf("applications: authorize: %w", err)
	}
	if !allowed {
		return httpx.ErrForbidden
	}
	return nil
}
