package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vagaflow/vagaflow/internal/platform/db"
)

// Repository defines persistence operations for the rbac module.
type Repository interface {
	InsertAssignment(ctx context.Context, a Assignment) (Assignment, error)
	GetAssignment(ctx context.Context, id int64) (Assignment, error)
	ListActiveAssignments(ctx context.Context, userID int64, companyID *int64) ([]Assignment, error)
	DeactivateAssignments(ctx context.Context, userID, companyID int64) error
	SetAssignmentRole(ctx context.Context, id int64, role Role) (Assignment, error)
	HasGrant(ctx context.Context, userID, companyID int64, perm Permission) (bool, error)
	GrantedPermissions(ctx context.Context, userID, companyID int64) ([]Permission, error)
	RoleGrants(ctx context.Context, role Role) ([]Permission, error)
	ReplaceAllGrants(ctx context.Context, grants []Grant) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const assignmentColumns = `id, user_id, company_id, role, cost_center_id, is_active, created_at, updated_at`

// InsertAssignment creates a new active assignment row. Duplicate rows for
// the same (user, company, role) are allowed; the gate takes a set union.
func (r *PGRepository) InsertAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO role_assignments (user_id, company_id, role, cost_center_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		RETURNING `+assignmentColumns,
		a.UserID, a.CompanyID, string(a.Role), a.CostCenterID,
	)
	return scanAssignment(row)
}

// GetAssignment fetches an assignment by id.
func (r *PGRepository) GetAssignment(ctx context.Context, id int64) (Assignment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM role_assignments WHERE id = $1`, id)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, ErrAssignmentNotFound
		}
		return Assignment{}, err
	}
	return a, nil
}

// ListActiveAssignments returns active assignments for a user, optionally
// narrowed to one company.
func (r *PGRepository) ListActiveAssignments(ctx context.Context, userID int64, companyID *int64) ([]Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM role_assignments WHERE user_id = $1 AND is_active ORDER BY id`
	args := []any{userID}
	if companyID != nil {
		query = `SELECT ` + assignmentColumns + ` FROM role_assignments WHERE user_id = $1 AND company_id = $2 AND is_active ORDER BY id`
		args = append(args, *companyID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeactivateAssignments flips is_active off for every assignment of the
// (user, company) pair. Rows are kept for the audit trail.
func (r *PGRepository) DeactivateAssignments(ctx context.Context, userID, companyID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE role_assignments SET is_active = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND company_id = $2 AND is_active`,
		userID, companyID,
	)
	return err
}

// SetAssignmentRole changes the role on an existing assignment.
func (r *PGRepository) SetAssignmentRole(ctx context.Context, id int64, role Role) (Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE role_assignments SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+assignmentColumns,
		id, string(role),
	)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, ErrAssignmentNotFound
		}
		return Assignment{}, err
	}
	return a, nil
}

// HasGrant answers the authorization question with a single joined query:
// does any active role of the user in the company grant the permission?
func (r *PGRepository) HasGrant(ctx context.Context, userID, companyID int64, perm Permission) (bool, error) {
	var allowed bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM role_assignments ra
			JOIN role_permission_grants g ON g.role = ra.role
			WHERE ra.user_id = $1 AND ra.company_id = $2 AND ra.is_active
			  AND g.permission = $3 AND g.is_granted
		)`,
		userID, companyID, string(perm),
	).Scan(&allowed)
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// GrantedPermissions returns the deduplicated union of permissions granted
// to the user across all active roles in the company.
func (r *PGRepository) GrantedPermissions(ctx context.Context, userID, companyID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT g.permission
		FROM role_assignments ra
		JOIN role_permission_grants g ON g.role = ra.role
		WHERE ra.user_id = $1 AND ra.company_id = $2 AND ra.is_active AND g.is_granted
		ORDER BY g.permission`,
		userID, companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// RoleGrants returns the granted permissions for a single role.
func (r *PGRepository) RoleGrants(ctx context.Context, role Role) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT permission FROM role_permission_grants
		WHERE role = $1 AND is_granted ORDER BY permission`,
		string(role),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// ReplaceAllGrants swaps the whole grant matrix inside one transaction so a
// concurrent HasGrant never observes the cleared intermediate state.
func (r *PGRepository) ReplaceAllGrants(ctx context.Context, grants []Grant) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permission_grants`); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, g := range grants {
			batch.Queue(`
				INSERT INTO role_permission_grants (role, permission, is_granted)
				VALUES ($1, $2, $3)`,
				string(g.Role), string(g.Permission), g.IsGranted,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (Assignment, error) {
	var (
		a          Assignment
		role       string
		costCenter pgtype.Int8
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.CompanyID, &role, &costCenter, &a.IsActive, &createdAt, &updatedAt); err != nil {
		return Assignment{}, err
	}
	a.Role = Role(role)
	if costCenter.Valid {
		a.CostCenterID = &costCenter.Int64
	}
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	return a, nil
}

func scanPermissions(rows pgx.Rows) ([]Permission, error) {
	var out []Permission
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, Permission(name))
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
