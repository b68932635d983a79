package repositories

import (
	"context"

	"github.com/itgc-audit/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

type ProfileRepo struct {
	db DBTX
}

func NewProfileRepo(db DBTX) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) WithTx(tx pgx.Tx) *ProfileRepo {
	return &ProfileRepo{db: tx}
}

const profileColumns = `id, actor_id, role, department, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.ActorProfile, error) {
	var p models.ActorProfile
	if err := row.Scan(&p.ID, &p.ActorID, &p.Role, &p.Department, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// Insert fails with ErrDuplicate when the actor already has a profile.
func (r *ProfileRepo) Insert(ctx context.Context, p *models.ActorProfile) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO actor_profiles (actor_id, role, department)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, p.ActorID, p.Role, p.Department).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapErr(err)
}

func (r *ProfileRepo) Update(ctx context.Context, p *models.ActorProfile) error {
	err := r.db.QueryRow(ctx, `
		UPDATE actor_profiles
		SET role = $1, department = $2, updated_at = now()
		WHERE id = $3
		RETURNING actor_id, created_at, updated_at
	`, p.Role, p.Department, p.ID).Scan(&p.ActorID, &p.CreatedAt, &p.UpdatedAt)
	return mapErr(err)
}

func (r *ProfileRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM actor_profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProfileRepo) DeleteByActor(ctx context.Context, actorID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM actor_profiles WHERE actor_id = $1`, actorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id int64) (*models.ActorProfile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM actor_profiles WHERE id = $1`, id))
}

func (r *ProfileRepo) GetByActorID(ctx context.Context, actorID int64) (*models.ActorProfile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM actor_profiles WHERE actor_id = $1`, actorID))
}

func (r *ProfileRepo) List(ctx context.Context) ([]models.ActorProfile, error) {
	rows, err := r.db.Query(ctx, `SELECT `+profileColumns+` FROM actor_profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.ActorProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
