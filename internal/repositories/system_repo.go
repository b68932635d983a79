package repositories

import (
	"context"

	"github.com/itgc-audit/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

type SystemRepo struct {
	db DBTX
}

func NewSystemRepo(db DBTX) *SystemRepo {
	return &SystemRepo{db: db}
}

func (r *SystemRepo) WithTx(tx pgx.Tx) *SystemRepo {
	return &SystemRepo{db: tx}
}

type SystemFilter struct {
	// Query matches a case-insensitive substring of the name.
	Query string
}

const systemColumns = `id, name, description, last_modified_by, created_at, updated_at`

func scanSystem(row pgx.Row) (*models.AuditedSystem, error) {
	var s models.AuditedSystem
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.LastModifiedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *SystemRepo) Insert(ctx context.Context, s *models.AuditedSystem) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO audited_systems (name, description, last_modified_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, s.Name, s.Description, s.LastModifiedBy).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapErr(err)
}

func (r *SystemRepo) Update(ctx context.Context, s *models.AuditedSystem) error {
	err := r.db.QueryRow(ctx, `
		UPDATE audited_systems
		SET name = $1, description = $2, last_modified_by = $3, updated_at = now()
		WHERE id = $4
		RETURNING created_at, updated_at
	`, s.Name, s.Description, s.LastModifiedBy, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapErr(err)
}

// Delete removes the row and returns it as it was, so the caller can attribute
// the deletion to the last recorded modifier.
func (r *SystemRepo) Delete(ctx context.Context, id int64) (*models.AuditedSystem, error) {
	return scanSystem(r.db.QueryRow(ctx, `
		DELETE FROM audited_systems WHERE id = $1
		RETURNING `+systemColumns, id))
}

func (r *SystemRepo) GetByID(ctx context.Context, id int64) (*models.AuditedSystem, error) {
	return scanSystem(r.db.QueryRow(ctx, `SELECT `+systemColumns+` FROM audited_systems WHERE id = $1`, id))
}

func (r *SystemRepo) List(ctx context.Context, f SystemFilter) ([]models.AuditedSystem, error) {
	query := `SELECT ` + systemColumns + ` FROM audited_systems`
	var args []any
	if f.Query != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+f.Query+"%")
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	systems := make([]models.AuditedSystem, 0)
	for rows.Next() {
		s, err := scanSystem(rows)
		if err != nil {
			return nil, err
		}
		systems = append(systems, *s)
	}
	return systems, rows.Err()
}

func (r *SystemRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audited_systems`).Scan(&n)
	return n, err
}

func (r *SystemRepo) NullifyLastModifiedBy(ctx context.Context, actorID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE audited_systems SET last_modified_by = NULL WHERE last_modified_by = $1`, actorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
