package professions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
)

// Repository defines persistence operations for professions.
type Repository interface {
	List(ctx context.Context, onlyActive bool) ([]Profession, error)
	Get(ctx context.Context, id int64) (Profession, error)
	Create(ctx context.Context, name string) (Profession, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns professions, optionally only active ones.
func (r *PGRepository) List(ctx context.Context, onlyActive bool) ([]Profession, error) {
	query := `SELECT id, name, is_active, created_at, updated_at FROM professions ORDER BY name`
	if onlyActive {
		query = `SELECT id, name, is_active, created_at, updated_at FROM professions WHERE is_active ORDER BY name`
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profession
	for rows.Next() {
		p, err := scanProfession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get fetches a profession by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Profession, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, is_active, created_at, updated_at FROM professions WHERE id = $1`, id)
	p, err := scanProfession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profession{}, httpx.ErrNotFound
		}
		return Profession{}, err
	}
	return p, nil
}

// Create inserts a new active profession.
func (r *PGRepository) Create(ctx context.Context, name string) (Profession, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO professions (name, is_active, created_at, updated_at)
		VALUES ($1, TRUE, NOW(), NOW())
		RETURNING id, name, is_active, created_at, updated_at`,
		name,
	)
	return scanProfession(row)
}

// SetActive toggles the active flag.
func (r *PGRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE professions SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfession(row rowScanner) (Profession, error) {
	var (
		p         Profession
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&p.ID, &p.Name, &p.IsActive, &createdAt, &updatedAt); err != nil {
		return Profession{}, err
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

var _ Repository = (*PGRepository)(nil)
