package companies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
)

// Repository defines persistence operations for companies and cost centers.
type Repository interface {
	List(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, c Company) (Company, error)
	Update(ctx context.Context, id int64, c Company) (Company, error)
	Delete(ctx context.Context, id int64) error
	ListCostCenters(ctx context.Context, companyID int64) ([]CostCenter, error)
	CreateCostCenter(ctx context.Context, cc CostCenter) (CostCenter, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const companyColumns = `id, code, name, tax_id, created_at, updated_at`

// List returns all companies ordered by name.
func (r *PGRepository) List(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get fetches a company by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	c, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, httpx.ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

// Create inserts a new company. A duplicate code maps to ErrDuplicate.
func (r *PGRepository) Create(ctx context.Context, c Company) (Company, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO companies (code, name, tax_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING `+companyColumns,
		c.Code, c.Name, c.TaxID,
	)
	created, err := scanCompany(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Company{}, httpx.ErrDuplicate
		}
		return Company{}, err
	}
	return created, nil
}

// Update rewrites the mutable columns of a company.
func (r *PGRepository) Update(ctx context.Context, id int64, c Company) (Company, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE companies SET code = $2, name = $3, tax_id = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+companyColumns,
		id, c.Code, c.Name, c.TaxID,
	)
	updated, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, httpx.ErrNotFound
		}
		return Company{}, err
	}
	return updated, nil
}

// Delete removes a company.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// ListCostCenters returns all cost centers of a company.
func (r *PGRepository) ListCostCenters(ctx context.Context, companyID int64) ([]CostCenter, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, code, name, created_at, updated_at
		FROM cost_centers WHERE company_id = $1 ORDER BY code`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CostCenter
	for rows.Next() {
		var (
			cc        CostCenter
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&cc.ID, &cc.CompanyID, &cc.Code, &cc.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		cc.CreatedAt = createdAt.Time
		cc.UpdatedAt = updatedAt.Time
		out = append(out, cc)
	}
	return out, rows.Err()
}

// CreateCostCenter inserts a new cost center for a company.
func (r *PGRepository) CreateCostCenter(ctx context.Context, cc CostCenter) (CostCenter, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cost_centers (company_id, code, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, company_id, code, name, created_at, updated_at`,
		cc.CompanyID, cc.Code, cc.Name,
	)
	var (
		created   CostCenter
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&created.ID, &created.CompanyID, &created.Code, &created.Name, &createdAt, &updatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return CostCenter{}, httpx.ErrDuplicate
		}
		return CostCenter{}, err
	}
	created.CreatedAt = createdAt.Time
	created.UpdatedAt = updatedAt.Time
	return created, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (Company, error) {
	var (
		c         Company
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.TaxID, &createdAt, &updatedAt); err != nil {
		return Company{}, err
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return c, nil
}

var _ Repository = (*PGRepository)(nil)
