package repositories

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// AuditFilter narrows an audit trail listing. Zero values mean "no filter".
type AuditFilter struct {
	Types      []string
	ActorID    *int64
	EntityKind string
	EntityID   *int64
	Since      *time.Time
	Until      *time.Time
	Limit      int
	Offset     int
}

func (f AuditFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultAuditLimit
	}
	if f.Limit > MaxAuditLimit {
		return MaxAuditLimit
	}
	return f.Limit
}

// auditColumns names the columns a trail table exposes to filtering.
type auditColumns struct {
	typeCol    string
	actorCol   string
	kindCol    string
	entityCol  string
	createdCol string
	idCol      string
}

// buildAuditQuery appends the filter's WHERE clause, the most-recent-first
// ordering and pagination to base. Rows sharing a timestamp come back in
// insertion (id) order.
func buildAuditQuery(base string, cols auditColumns, f AuditFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Types) > 0 {
		conds = append(conds, cols.typeCol+" = ANY("+arg(f.Types)+")")
	}
	if f.ActorID != nil {
		conds = append(conds, cols.actorCol+" = "+arg(*f.ActorID))
	}
	if f.EntityKind != "" && cols.kindCol != "" {
		conds = append(conds, cols.kindCol+" = "+arg(f.EntityKind))
	}
	if f.EntityID != nil && cols.entityCol != "" {
		conds = append(conds, cols.entityCol+" = "+arg(*f.EntityID))
	}
	if f.Since != nil {
		conds = append(conds, cols.createdCol+" >= "+arg(*f.Since))
	}
	if f.Until != nil {
		conds = append(conds, cols.createdCol+" < "+arg(*f.Until))
	}

	query := base
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s DESC, %s ASC", cols.createdCol, cols.idCol)
	query += " LIMIT " + arg(f.limit())
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}
	return query, args
}
