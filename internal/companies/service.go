package companies

import (
	"context"
	"fmt"
	"strings"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
)

// Service handles company business logic.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all companies.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

// Get returns one company by id.
func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a company.
func (s *Service) Create(ctx context.Context, form CompanyForm) (Company, error) {
	c, err := fromForm(form)
	if err != nil {
		return Company{}, err
	}
	return s.repo.Create(ctx, c)
}

// Update validates and rewrites a company.
func (s *Service) Update(ctx context.Context, id int64, form CompanyForm) (Company, error) {
	c, err := fromForm(form)
	if err != nil {
		return Company{}, err
	}
	return s.repo.Update(ctx, id, c)
}

// Delete removes a company.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ListCostCenters returns the cost centers of a company.
func (s *Service) ListCostCenters(ctx context.Context, companyID int64) ([]CostCenter, error) {
	return s.repo.ListCostCenters(ctx, companyID)
}

// CreateCostCenter validates and inserts a cost center.
func (s *Service) CreateCostCenter(ctx context.Context, companyID int64, form CostCenterForm) (CostCenter, error) {
	code := strings.TrimSpace(form.Code)
	name := strings.TrimSpace(form.Name)
	if code == "" || name == "" {
		return CostCenter{}, fmt.Errorf("cost center code and name are required: %w", httpx.ErrValidation)
	}
	return s.repo.CreateCostCenter(ctx, CostCenter{CompanyID: companyID, Code: code, Name: name})
}

func fromForm(form CompanyForm) (Company, error) {
	code := strings.TrimSpace(form.Code)
	name := strings.TrimSpace(form.Name)
	if code == "" || name == "" {
		return Company{}, fmt.Errorf("company code and name are required: %w", httpx.ErrValidation)
	}
	return Company{Code: code, Name: name, TaxID: strings.TrimSpace(form.TaxID)}, nil
}
