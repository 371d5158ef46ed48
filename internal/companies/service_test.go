package companies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
)

type memoryRepo struct {
	companies   map[int64]Company
	costCenters map[int64][]CostCenter
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{companies: make(map[int64]Company), costCenters: make(map[int64][]CostCenter)}
}

func (r *memoryRepo) List(_ context.Context) ([]Company, error) {
	var out []Company
	for id := int64(1); id <= r.nextID; id++ {
		if c, ok := r.companies[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return Company{}, httpx.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) Create(_ context.Context, c Company) (Company, error) {
	for _, existing := range r.companies {
		if existing.Code == c.Code {
			return Company{}, httpx.ErrDuplicate
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.companies[c.ID] = c
	return c, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, c Company) (Company, error) {
	existing, ok := r.companies[id]
	if !ok {
		return Company{}, httpx.ErrNotFound
	}
	existing.Code = c.Code
	existing.Name = c.Name
	existing.TaxID = c.TaxID
	r.companies[id] = existing
	return existing, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.companies[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.companies, id)
	return nil
}

func (r *memoryRepo) ListCostCenters(_ context.Context, companyID int64) ([]CostCenter, error) {
	return r.costCenters[companyID], nil
}

func (r *memoryRepo) CreateCostCenter(_ context.Context, cc CostCenter) (CostCenter, error) {
	for _, existing := range r.costCenters[cc.CompanyID] {
		if existing.Code == cc.Code {
			return CostCenter{}, httpx.ErrDuplicate
		}
	}
	cc.ID = int64(len(r.costCenters[cc.CompanyID]) + 1)
	r.costCenters[cc.CompanyID] = append(r.costCenters[cc.CompanyID], cc)
	return cc, nil
}

var _ Repository = (*memoryRepo)(nil)

func TestCreateTrimsAndValidates(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CompanyForm{Code: " ACME ", Name: " Acme Engenharia "})
	require.NoError(t, err)
	require.Equal(t, "ACME", created.Code)
	require.Equal(t, "Acme Engenharia", created.Name)

	_, err = svc.Create(ctx, CompanyForm{Code: "  ", Name: "Sem Codigo"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CompanyForm{Code: "ACME", Name: "Acme Engenharia"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CompanyForm{Code: "ACME", Name: "Acme Clone"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCostCenterScopedToCompany(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	a, err := svc.Create(ctx, CompanyForm{Code: "ACME", Name: "Acme Engenharia"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, CompanyForm{Code: "NORTE", Name: "Norte Servicos"})
	require.NoError(t, err)

	// The same code may exist in different companies.
	_, err = svc.CreateCostCenter(ctx, a.ID, CostCenterForm{Code: "CC-001", Name: "Operacoes"})
	require.NoError(t, err)
	_, err = svc.CreateCostCenter(ctx, b.ID, CostCenterForm{Code: "CC-001", Name: "Operacoes"})
	require.NoError(t, err)
	_, err = svc.CreateCostCenter(ctx, a.ID, CostCenterForm{Code: "CC-001", Name: "Duplicado"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)

	centers, err := svc.ListCostCenters(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, centers, 1)
}
