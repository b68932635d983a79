package repositories

import (
	"context"

	"github.com/itgc-audit/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// AccessEventRepo is append-only: rows are inserted and read, never edited.
// NullifyActor is the single exception, run when an actor is deleted.
type AccessEventRepo struct {
	db DBTX
}

func NewAccessEventRepo(db DBTX) *AccessEventRepo {
	return &AccessEventRepo{db: db}
}

func (r *AccessEventRepo) WithTx(tx pgx.Tx) *AccessEventRepo {
	return &AccessEventRepo{db: tx}
}

var accessEventCols = auditColumns{
	typeCol:    "e.event_type",
	actorCol:   "e.actor_id",
	createdCol: "e.created_at",
	idCol:      "e.id",
}

func (r *AccessEventRepo) Insert(ctx context.Context, e *models.AccessEvent) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO access_events (actor_id, event_type, network_address, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, e.ActorID, e.EventType, e.NetworkAddress, e.Details).Scan(&e.ID, &e.CreatedAt)
}

func (r *AccessEventRepo) List(ctx context.Context, f AuditFilter) ([]models.AccessEvent, error) {
	query, args := buildAuditQuery(`
		SELECT e.id, e.actor_id, a.username, e.event_type, e.network_address, e.details, e.created_at
		FROM access_events e
		LEFT JOIN actors a ON a.id = e.actor_id`, accessEventCols, f)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.AccessEvent, 0)
	for rows.Next() {
		var e models.AccessEvent
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorUsername, &e.EventType, &e.NetworkAddress, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *AccessEventRepo) NullifyActor(ctx context.Context, actorID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE access_events SET actor_id = NULL WHERE actor_id = $1`, actorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
