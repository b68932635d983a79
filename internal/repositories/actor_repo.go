package repositories

import (
	"context"

	"github.com/itgc-audit/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

type ActorRepo struct {
	db DBTX
}

func NewActorRepo(db DBTX) *ActorRepo {
	return &ActorRepo{db: db}
}

func (r *ActorRepo) WithTx(tx pgx.Tx) *ActorRepo {
	return &ActorRepo{db: tx}
}

const actorColumns = `id, username, password_hash, is_staff, is_active, created_at`

func scanActor(row pgx.Row) (*models.Actor, error) {
	var a models.Actor
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsStaff, &a.IsActive, &a.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *ActorRepo) Create(ctx context.Context, a *models.Actor) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO actors (username, password_hash, is_staff)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at
	`, a.Username, a.PasswordHash, a.IsStaff).Scan(&a.ID, &a.IsActive, &a.CreatedAt)
	return mapErr(err)
}

func (r *ActorRepo) GetByID(ctx context.Context, id int64) (*models.Actor, error) {
	return scanActor(r.db.QueryRow(ctx, `SELECT `+actorColumns+` FROM actors WHERE id = $1`, id))
}

func (r *ActorRepo) GetByUsername(ctx context.Context, username string) (*models.Actor, error) {
	return scanActor(r.db.QueryRow(ctx, `SELECT `+actorColumns+` FROM actors WHERE username = $1`, username))
}

func (r *ActorRepo) List(ctx context.Context) ([]models.Actor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+actorColumns+` FROM actors ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actors := make([]models.Actor, 0)
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		actors = append(actors, *a)
	}
	return actors, rows.Err()
}

func (r *ActorRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM actors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
