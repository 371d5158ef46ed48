package vacancies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
	"github.com/vagaflow/vagaflow/internal/professions"
	"github.com/vagaflow/vagaflow/internal/rbac"
	"github.com/vagaflow/vagaflow/internal/shared"
)

var (
	// ErrInvalidStatus indicates a status outside the closed enumeration.
	ErrInvalidStatus = fmt.Errorf("vacancies: invalid status: %w", httpx.ErrValidation)
	// ErrInvalidReference indicates a missing or inactive referenced record.
	ErrInvalidReference = fmt.Errorf("vacancies: invalid reference: %w", httpx.ErrValidation)
	// ErrCompanyRequired indicates a listing without a company scope by a
	// caller who is not a global admin.
	ErrCompanyRequired = fmt.Errorf("vacancies: company filter required: %w", httpx.ErrValidation)
)

// Authorizer answers company-scoped permission questions. Satisfied by
// rbac.Service.
type Authorizer interface {
	HasPermission(ctx context.Context, userID, companyID int64, perm rbac.Permission) (bool, error)
}

// ProfessionCatalog resolves profession references. Satisfied by
// professions.Service.
type ProfessionCatalog interface {
	Get(ctx context.Context, id int64) (professions.Profession, error)
}

// Service owns the posting lifecycle. Every mutation resolves the
// posting's own company from storage and asks the authorization gate
// before touching the row; the company in a request body is only ever
// honored at creation.
type Service struct {
	repo        Repository
	authz       Authorizer
	professions ProfessionCatalog
	now         func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, authz Authorizer, catalog ProfessionCatalog) *Service {
	return &Service{
		repo:        repo,
		authz:       authz,
		professions: catalog,
		now:         time.Now,
	}
}

// Create validates references, fixes the SLA deadline, and inserts the
// posting. Requires create_jobs in the target company.
func (s *Service) Create(ctx context.Context, ident shared.Identity, req CreateVacancyRequest) (Vacancy, error) {
	if err := s.require(ctx, ident, req.CompanyID, rbac.PermCreateJobs); err != nil {
		return Vacancy{}, err
	}

	status := StatusDraft
	if req.Status != "" {
		parsed, ok := ParseStatus(req.Status)
		if !ok {
			return Vacancy{}, ErrInvalidStatus
		}
		status = parsed
	}

	profession, err := s.professions.Get(ctx, req.ProfessionID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return Vacancy{}, ErrInvalidReference
		}
		return Vacancy{}, fmt.Errorf("vacancies: resolve profession: %w", err)
	}
	if !profession.IsActive {
		return Vacancy{}, ErrInvalidReference
	}

	now := s.now()
	created, err := s.repo.Create(ctx, Vacancy{
		CompanyID:    req.CompanyID,
		CostCenterID: req.CostCenterID,
		ProfessionID: req.ProfessionID,
		RecruiterID:  req.RecruiterID,
		ClientID:     req.ClientID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       status,
		SLADeadline:  SLADeadlineFor(now),
		CreatedBy:    ident.UserID,
		CreatedAt:    now,
	})
	if err != nil {
		return Vacancy{}, fmt.Errorf("vacancies: create: %w", err)
	}
	return created, nil
}

// Get returns a posting, gated on view_jobs in its company.
func (s *Service) Get(ctx context.Context, ident shared.Identity, id int64) (Vacancy, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return Vacancy{}, err
	}
	if err := s.require(ctx, ident, v.CompanyID, rbac.PermViewJobs); err != nil {
		return Vacancy{}, err
	}
	return v, nil
}

// Update rewrites the mutable fields of a posting. The company is resolved
// from the stored row; the request cannot move a posting between companies.
// Requires edit_jobs in the posting's company.
func (s *Service) Update(ctx context.Context, ident shared.Identity, id int64, req UpdateVacancyRequest) (Vacancy, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Vacancy{}, err
	}
	if err := s.require(ctx, ident, existing.CompanyID, rbac.PermEditJobs); err != nil {
		return Vacancy{}, err
	}

	if req.ProfessionID != nil {
		profession, err := s.professions.Get(ctx, *req.ProfessionID)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				return Vacancy{}, ErrInvalidReference
			}
			return Vacancy{}, fmt.Errorf("vacancies: resolve profession: %w", err)
		}
		if !profession.IsActive {
			return Vacancy{}, ErrInvalidReference
		}
		existing.ProfessionID = *req.ProfessionID
	}
	if req.CostCenterID != nil {
		existing.CostCenterID = req.CostCenterID
	}
	if req.RecruiterID != nil {
		existing.RecruiterID = req.RecruiterID
	}
	if req.ClientID != nil {
		existing.ClientID = req.ClientID
	}
	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return Vacancy{}, fmt.Errorf("vacancies: update: %w", err)
	}
	return updated, nil
}

// UpdateStatus overwrites the posting status. Any status in the
// enumeration is reachable from any other; there is no transition graph.
// Requires edit_jobs in the posting's company.
func (s *Service) UpdateStatus(ctx context.Context, ident shared.Identity, id int64, rawStatus string) (Vacancy, error) {
	status, ok := ParseStatus(rawStatus)
	if !ok {
		return Vacancy{}, ErrInvalidStatus
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Vacancy{}, err
	}
	if err := s.require(ctx, ident, existing.CompanyID, rbac.PermEditJobs); err != nil {
		return Vacancy{}, err
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return Vacancy{}, fmt.Errorf("vacancies: update status: %w", err)
	}
	return updated, nil
}

// Delete removes a posting. Requires delete_jobs in its company.
func (s *Service) Delete(ctx context.Context, ident shared.Identity, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.require(ctx, ident, existing.CompanyID, rbac.PermDeleteJobs); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("vacancies: delete: %w", err)
	}
	return nil
}

// List returns postings visible to the caller. Global recruiters never see
// postings still in approval (aberto, aprovada); the exclusion is applied
// inside the query so pagination composes.
func (s *Service) List(ctx context.Context, ident shared.Identity, filter ListFilter) ([]Vacancy, int, error) {
	if filter.CompanyID != nil {
		if err := s.require(ctx, ident, *filter.CompanyID, rbac.PermViewJobs); err != nil {
			return nil, 0, err
		}
	} else if ident.GlobalRole != rbac.RoleAdmin.String() {
		return nil, 0, ErrCompanyRequired
	}

	filter.excludeStatuses = HiddenStatusesFor(ident.GlobalRole)
	out, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("vacancies: list: %w", err)
	}
	return out, total, nil
}

// require asks the gate and collapses a denial into ErrForbidden. Storage
// faults pass through untouched so they surface as 500, not 403.
func (s *Service) require(ctx context.Context, ident shared.Identity, companyID int64, perm rbac.Permission) error {
	allowed, err := s.authz.HasPermission(ctx, ident.UserID, companyID, perm)
	if err != nil {
		return fmt.Errorf("vacancies: authorize: %w", err)
	}
	if !allowed {
		return httpx.ErrForbidden
	}
	return nil
}
