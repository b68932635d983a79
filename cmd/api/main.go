package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/archive"
	"github.com/itgc-audit/backend/internal/auth"
	"github.com/itgc-audit/backend/internal/config"
	"github.com/itgc-audit/backend/internal/db"
	"github.com/itgc-audit/backend/internal/events"
	apphttp "github.com/itgc-audit/backend/internal/http"
	"github.com/itgc-audit/backend/internal/http/handlers"
	"github.com/itgc-audit/backend/internal/metrics"
	"github.com/itgc-audit/backend/internal/report"
	"github.com/itgc-audit/backend/internal/repositories"
	"github.com/itgc-audit/backend/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: int32(cfg.PostgresMaxConns)}, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, os.DirFS(cfg.MigrationsDir), log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Repositories
	actorRepo := repositories.NewActorRepo(pool)
	systemRepo := repositories.NewSystemRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	accessRepo := repositories.NewAccessEventRepo(pool)
	changeRepo := repositories.NewChangeEventRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)
	revocations := auth.NewRedisRevocationStore(rdb)

	// Services
	observer := services.NewChangeObserver(m, log)
	recorder := services.NewAccessRecorder(accessRepo, publisher, m, log)
	authService := services.NewAuthService(actorRepo, recorder, revocations, cfg.JWTSecret, cfg.JWTExpiration, log)
	actorService := services.NewActorService(pool, actorRepo, systemRepo, profileRepo, accessRepo, changeRepo, revocations, cfg.JWTExpiration, log)
	systemService := services.NewSystemService(pool, systemRepo, changeRepo, observer, publisher, log)
	profileService := services.NewProfileService(pool, profileRepo, actorRepo, changeRepo, observer, publisher, log)
	auditService := services.NewAuditService(accessRepo, changeRepo)
	dashboardService := services.NewDashboardService(systemRepo, accessRepo, changeRepo, cfg.DashboardRecentLimit)

	var reportArchive services.ReportArchive
	if cfg.S3Bucket != "" {
		a, err := archive.NewS3Archive(ctx, archive.Options{
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
		reportArchive = a
	}
	reportService := services.NewReportService(systemRepo, accessRepo, report.NewCompiler(), reportArchive, cfg.ReportRecentAccessLimit, m, log)

	created, err := actorService.EnsureBootstrapAdmin(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
	if err != nil {
		log.Fatal("failed to bootstrap admin", zap.Error(err))
	}
	if created {
		log.Info("bootstrap admin created", zap.String("username", cfg.BootstrapAdminUsername))
	}

	// Handlers
	h := apphttp.Handlers{
		Auth:      handlers.NewAuthHandler(authService, actorService, log),
		Systems:   handlers.NewSystemHandler(systemService, log),
		Profiles:  handlers.NewProfileHandler(profileService, log),
		Actors:    handlers.NewActorHandler(actorService, log),
		Audit:     handlers.NewAuditHandler(auditService, log),
		Dashboard: handlers.NewDashboardHandler(dashboardService, log),
		Reports:   handlers.NewReportHandler(reportService, log),
		WS:        handlers.NewWSHub(cfg, subscriber, revocations, profileService, log),
	}

	// Start WS hub
	if err := h.WS.Start(ctx); err != nil {
		log.Fatal("failed to subscribe to audit stream", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: apphttp.ErrorHandler,
	})

	apphttp.SetupRouter(app, cfg, log, rdb, revocations, profileService, recorder, reg, h)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
