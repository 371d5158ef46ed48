package vacancies

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
)

// Repository defines persistence operations for vacancies.
type Repository interface {
	Create(ctx context.Context, v Vacancy) (Vacancy, error)
	Get(ctx context.Context, id int64) (Vacancy, error)
	Update(ctx context.Context, v Vacancy) (Vacancy, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (Vacancy, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]Vacancy, int, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]Vacancy, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const vacancyColumns = `id, company_id, cost_center_id, profession_id, recruiter_id, client_id,
	title, description, status, sla_deadline, created_by, created_at, updated_at`

// Create inserts a new posting with its fixed SLA deadline.
func (r *PGRepository) Create(ctx context.Context, v Vacancy) (Vacancy, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO vacancies (company_id, cost_center_id, profession_id, recruiter_id, client_id,
			title, description, status, sla_deadline, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING `+vacancyColumns,
		v.CompanyID, v.CostCenterID, v.ProfessionID, v.RecruiterID, v.ClientID,
		v.Title, v.Description, string(v.Status), v.SLADeadline, v.CreatedBy, v.CreatedAt,
	)
	return scanVacancy(row)
}

// Get fetches a posting by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Vacancy, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vacancyColumns+` FROM vacancies WHERE id = $1`, id)
	v, err := scanVacancy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vacancy{}, httpx.ErrNotFound
		}
		return Vacancy{}, err
	}
	return v, nil
}

// Update rewrites the mutable columns. company_id, sla_deadline, created_by
// and created_at are deliberately absent from the statement: they are fixed
// at creation.
func (r *PGRepository) Update(ctx context.Context, v Vacancy) (Vacancy, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE vacancies
		SET cost_center_id = $2, profession_id = $3, recruiter_id = $4, client_id = $5,
			title = $6, description = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+vacancyColumns,
		v.ID, v.CostCenterID, v.ProfessionID, v.RecruiterID, v.ClientID, v.Title, v.Description,
	)
	updated, err := scanVacancy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vacancy{}, httpx.ErrNotFound
		}
		return Vacancy{}, err
	}
	return updated, nil
}

// UpdateStatus overwrites only the status column.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status Status) (Vacancy, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE vacancies SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+vacancyColumns,
		id, string(status),
	)
	updated, err := scanVacancy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vacancy{}, httpx.ErrNotFound
		}
		return Vacancy{}, err
	}
	return updated, nil
}

// Delete removes a posting.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vacancies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// List returns postings matching the filter plus the total count. Status
// exclusions are part of the WHERE clause so limit/offset stay correct.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Vacancy, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.CompanyID != nil {
		argCount++
		where += ` AND company_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.CompanyID)
	}
	if filter.Status != nil {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, string(*filter.Status))
	}
	if len(filter.excludeStatuses) > 0 {
		excluded := make([]string, len(filter.excludeStatuses))
		for i, s := range filter.excludeStatuses {
			excluded[i] = string(s)
		}
		argCount++
		where += ` AND status <> ALL($` + strconv.Itoa(argCount) + `)`
		args = append(args, excluded)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vacancies`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + vacancyColumns + ` FROM vacancies` + where + ` ORDER BY created_at DESC, id DESC`
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, perPage)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Vacancy
	for rows.Next() {
		v, err := scanVacancy(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

// ListOverdue returns non-terminal postings past their SLA deadline.
func (r *PGRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]Vacancy, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+vacancyColumns+` FROM vacancies
		WHERE sla_deadline < $1 AND status NOT IN ('closed', 'expired', 'cancelada')
		ORDER BY sla_deadline
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vacancy
	for rows.Next() {
		v, err := scanVacancy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVacancy(row rowScanner) (Vacancy, error) {
	var (
		v           Vacancy
		status      string
		costCenter  pgtype.Int8
		recruiter   pgtype.Int8
		client      pgtype.Int8
		slaDeadline pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	err := row.Scan(&v.ID, &v.CompanyID, &costCenter, &v.ProfessionID, &recruiter, &client,
		&v.Title, &v.Description, &status, &slaDeadline, &v.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return Vacancy{}, err
	}
	v.Status = Status(status)
	if costCenter.Valid {
		v.CostCenterID = &costCenter.Int64
	}
	if recruiter.Valid {
		v.RecruiterID = &recruiter.Int64
	}
	if client.Valid {
		v.ClientID = &client.Int64
	}
	if slaDeadline.Valid {
		v.SLADeadline = slaDeadline.Time
	}
	if createdAt.Valid {
		v.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		v.UpdatedAt = updatedAt.Time
	}
	return v, nil
}

var _ Repository = (*PGRepository)(nil)
