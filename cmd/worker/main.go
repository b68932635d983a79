package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itgc-audit/backend/internal/archive"
	"github.com/itgc-audit/backend/internal/config"
	"github.com/itgc-audit/backend/internal/db"
	"github.com/itgc-audit/backend/internal/metrics"
	"github.com/itgc-audit/backend/internal/report"
	"github.com/itgc-audit/backend/internal/repositories"
	"github.com/itgc-audit/backend/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// archiveTimeout bounds a single scheduled report run.
const archiveTimeout = 5 * time.Minute

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)
	if cfg.S3Bucket == "" {
		log.Fatal("worker requires S3_BUCKET for report archival")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: 4}, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	reportArchive, err := archive.NewS3Archive(ctx, archive.Options{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		Endpoint:     cfg.S3Endpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UsePathStyle: cfg.S3UsePathStyle,
		Prefix:       cfg.S3Prefix,
	}, log)
	if err != nil {
		log.Fatal("failed to configure report archive", zap.Error(err))
	}

	reportService := services.NewReportService(
		repositories.NewSystemRepo(pool),
		repositories.NewAccessEventRepo(pool),
		report.NewCompiler(),
		reportArchive,
		cfg.ReportRecentAccessLimit,
		metrics.New(prometheus.NewRegistry()),
		log,
	)

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReportArchiveCron, func() {
		runReportArchive(ctx, reportService, log)
	}); err != nil {
		log.Fatal("invalid report archive schedule", zap.String("cron", cfg.ReportArchiveCron), zap.Error(err))
	}
	c.Start()

	log.Info("worker started", zap.String("report_archive_cron", cfg.ReportArchiveCron))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down worker")
	<-c.Stop().Done()
	cancel()
}

func runReportArchive(ctx context.Context, reportService *services.ReportService, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	key, err := reportService.Archive(ctx, time.Now())
	if err != nil {
		log.Error("scheduled report archive failed", zap.Error(err))
		return
	}
	log.Info("compliance report archived", zap.String("key", key))
}
