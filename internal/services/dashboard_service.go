package services

import (
	"context"
	"fmt"

	"github.com/itgc-audit/backend/internal/models"
	"github.com/itgc-audit/backend/internal/repositories"
)

type Dashboard struct {
	Systems       []models.AuditedSystem `json:"systems"`
	TotalSystems  int64                  `json:"total_systems"`
	RecentAccess  []models.AccessEvent   `json:"recent_access_events"`
	RecentChanges []models.ChangeEvent   `json:"recent_change_events"`
}

type DashboardService struct {
	systems     *repositories.SystemRepo
	access      *repositories.AccessEventRepo
	changes     *repositories.ChangeEventRepo
	recentLimit int
}

func NewDashboardService(
	systems *repositories.SystemRepo,
	access *repositories.AccessEventRepo,
	changes *repositories.ChangeEventRepo,
	recentLimit int,
) *DashboardService {
	return &DashboardService{
		systems:     systems,
		access:      access,
		changes:     changes,
		recentLimit: recentLimit,
	}
}

func (s *DashboardService) Snapshot(ctx context.Context) (*Dashboard, error) {
	systems, err := s.systems.List(ctx, repositories.SystemFilter{})
	if err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}
	total, err := s.systems.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count systems: %w", err)
	}
	access, err := s.access.List(ctx, repositories.AuditFilter{Limit: s.recentLimit})
	if err != nil {
		return nil, fmt.Errorf("recent access events: %w", err)
	}
	changes, err := s.changes.List(ctx, repositories.AuditFilter{Limit: s.recentLimit})
	if err != nil {
		return nil, fmt.Errorf("recent change events: %w", err)
	}

	return &Dashboard{
		Systems:       systems,
		TotalSystems:  total,
		RecentAccess:  access,
		RecentChanges: changes,
	}, nil
}
