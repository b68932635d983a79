package services

import (
	"context"

	"github.com/itgc-audit/backend/internal/models"
	"github.com/itgc-audit/backend/internal/repositories"
)

// AuditService reads the audit trail. It has no write path.
type AuditService struct {
	access  *repositories.AccessEventRepo
	changes *repositories.ChangeEventRepo
}

func NewAuditService(access *repositories.AccessEventRepo, changes *repositories.ChangeEventRepo) *AuditService {
	return &AuditService{access: access, changes: changes}
}

func (s *AuditService) ListAccessEvents(ctx context.Context, f repositories.AuditFilter) ([]models.AccessEvent, error) {
	for _, t := range f.Types {
		if !models.IsValidAccessEventType(t) {
			return nil, invalid("unknown access event type %q", t)
		}
	}
	if f.EntityKind != "" || f.EntityID != nil {
		return nil, invalid("access events have no entity")
	}
	if err := checkWindow(f); err != nil {
		return nil, err
	}
	return s.access.List(ctx, f)
}

func (s *AuditService) ListChangeEvents(ctx context.Context, f repositories.AuditFilter) ([]models.ChangeEvent, error) {
	for _, t := range f.Types {
		if !models.IsValidChangeType(t) {
			return nil, invalid("unknown change type %q", t)
		}
	}
	if err := checkWindow(f); err != nil {
		return nil, err
	}
	return s.changes.List(ctx, f)
}

func checkWindow(f repositories.AuditFilter) error {
	if f.Since != nil && f.Until != nil && !f.Since.Before(*f.Until) {
		return invalid("since must be before until")
	}
	if f.Offset < 0 {
		return invalid("offset must not be negative")
	}
	return nil
}
