package applications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
)

// Repository defines persistence operations for applications.
type Repository interface {
	Create(ctx context.Context, a Application) (Application, error)
	Get(ctx context.Context, id int64) (Application, error)
	MoveStage(ctx context.Context, id int64, stage Stage) (Application, error)
	Delete(ctx context.Context, id int64) error
	ListByVacancy(ctx context.Context, vacancyID int64) ([]Application, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const applicationColumns = `id, vacancy_id, candidate_name, candidate_email, stage, notes, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, a Application) (Application, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO applications (vacancy_id, candidate_name, candidate_email, stage, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING `+applicationColumns,
		a.VacancyID, a.CandidateName, a.CandidateEmail, string(a.Stage), a.Notes,
	)
	return scanApplication(row)
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, httpx.ErrNotFound
		}
		return Application{}, err
	}
	return a, nil
}

func (r *PGRepository) MoveStage(ctx context.Context, id int64, stage Stage) (Application, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE applications SET stage = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+applicationColumns,
		id, string(stage),
	)
	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, httpx.ErrNotFound
		}
		return Application{}, err
	}
	return a, nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ListByVacancy(ctx context.Context, vacancyID int64) ([]Application, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE vacancy_id = $1
		ORDER BY created_at, id`,
		vacancyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var (
		a         Application
		stage     string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&a.ID, &a.VacancyID, &a.CandidateName, &a.CandidateEmail, &stage, &a.Notes, &createdAt, &updatedAt)
	if err != nil {
		return Application{}, err
	}
	a.Stage = Stage(stage)
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	return a, nil
}

var _ Repository = (*PGRepository)(nil)
