package repositories

import (
	"context"

	"github.com/itgc-audit/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// ChangeEventRepo is append-only. DeleteByActor exists only for the actor
// deletion cascade.
type ChangeEventRepo struct {
	db DBTX
}

func NewChangeEventRepo(db DBTX) *ChangeEventRepo {
	return &ChangeEventRepo{db: db}
}

func (r *ChangeEventRepo) WithTx(tx pgx.Tx) *ChangeEventRepo {
	return &ChangeEventRepo{db: tx}
}

var changeEventCols = auditColumns{
	typeCol:    "e.change_type",
	actorCol:   "e.actor_id",
	kindCol:    "e.entity_kind",
	entityCol:  "e.entity_id",
	createdCol: "e.created_at",
	idCol:      "e.id",
}

func (r *ChangeEventRepo) Insert(ctx context.Context, e *models.ChangeEvent) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO change_events (actor_id, change_type, entity_kind, entity_id, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, e.ActorID, e.ChangeType, e.EntityKind, e.EntityID, e.Description).Scan(&e.ID, &e.CreatedAt)
}

func (r *ChangeEventRepo) List(ctx context.Context, f AuditFilter) ([]models.ChangeEvent, error) {
	query, args := buildAuditQuery(`
		SELECT e.id, e.actor_id, a.username, e.change_type, e.entity_kind, e.entity_id, e.description, e.created_at
		FROM change_events e
		LEFT JOIN actors a ON a.id = e.actor_id`, changeEventCols, f)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.ChangeEvent, 0)
	for rows.Next() {
		var e models.ChangeEvent
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorUsername, &e.ChangeType, &e.EntityKind, &e.EntityID, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *ChangeEventRepo) DeleteByActor(ctx context.Context, actorID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM change_events WHERE actor_id = $1`, actorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
