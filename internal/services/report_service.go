package services

import (
	"context"
	"fmt"
	"time"

	"github.com/itgc-audit/backend/internal/metrics"
	"github.com/itgc-audit/backend/internal/report"
	"github.com/itgc-audit/backend/internal/repositories"
	"go.uber.org/zap"
)

type ReportCompiler interface {
	Compile(snap report.Snapshot) ([]byte, error)
}

type ReportArchive interface {
	ReportKey(baseName string, at time.Time) string
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

type ReportService struct {
	systems     *repositories.SystemRepo
	access      *repositories.AccessEventRepo
	compiler    ReportCompiler
	archive     ReportArchive
	accessLimit int
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewReportService(
	systems *repositories.SystemRepo,
	access *repositories.AccessEventRepo,
	compiler ReportCompiler,
	archive ReportArchive,
	accessLimit int,
	m *metrics.Metrics,
	log *zap.Logger,
) *ReportService {
	return &ReportService{
		systems:     systems,
		access:      access,
		compiler:    compiler,
		archive:     archive,
		accessLimit: accessLimit,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

// Generate compiles the compliance report from every system and the most
// recent access events. A failure yields no document.
func (s *ReportService) Generate(ctx context.Context) ([]byte, error) {
	return s.generate(ctx, s.now())
}

func (s *ReportService) generate(ctx context.Context, at time.Time) ([]byte, error) {
	out, err := s.compile(ctx, at)
	s.metrics.ReportGenerated(err == nil)
	if err != nil {
		s.log.Error("report generation failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *ReportService) compile(ctx context.Context, at time.Time) ([]byte, error) {
	systems, err := s.systems.List(ctx, repositories.SystemFilter{})
	if err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}
	events, err := s.access.List(ctx, repositories.AuditFilter{Limit: s.accessLimit})
	if err != nil {
		return nil, fmt.Errorf("recent access events: %w", err)
	}

	out, err := s.compiler.Compile(report.Snapshot{
		GeneratedAt:  at,
		Systems:      systems,
		AccessEvents: events,
	})
	if err != nil {
		return nil, fmt.Errorf("compile report: %w", err)
	}
	return out, nil
}

// Archive generates a report stamped with at and uploads it. It returns the
// object key.
func (s *ReportService) Archive(ctx context.Context, at time.Time) (string, error) {
	if s.archive == nil {
		return "", fmt.Errorf("report archive is not configured")
	}

	out, err := s.generate(ctx, at)
	if err != nil {
		return "", err
	}

	key := s.archive.ReportKey(report.Filename, at)
	if err := s.archive.Put(ctx, key, out, report.ContentType); err != nil {
		return "", err
	}
	return key, nil
}
