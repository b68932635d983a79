package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/itgc-audit/backend/internal/auth"
	"github.com/itgc-audit/backend/internal/config"
	"github.com/itgc-audit/backend/internal/http/handlers"
	"github.com/itgc-audit/backend/internal/middleware"
	"github.com/itgc-audit/backend/internal/rbac"
	"github.com/itgc-audit/backend/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Systems   *handlers.SystemHandler
	Profiles  *handlers.ProfileHandler
	Actors    *handlers.ActorHandler
	Audit     *handlers.AuditHandler
	Dashboard *handlers.DashboardHandler
	Reports   *handlers.ReportHandler
	WS        *handlers.WSHub
}

// SetupRouter mounts every route. rdb may be nil, which disables rate
// limiting; gatherer may be nil, which hides /metrics.
func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	revocations auth.RevocationStore,
	profiles middleware.ProfileLookup,
	recorder *services.AccessRecorder,
	gatherer prometheus.Gatherer,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: "Content-Disposition",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.ClientAddressMiddleware(cfg.ForwardedForHeader))
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")

	// Auth (public)
	login := []fiber.Handler{}
	if rdb != nil {
		login = append(login, middleware.RateLimitMiddleware(rdb, "login", cfg.LoginRateLimit, cfg.LoginRateWindow, log))
	}
	api.Post("/auth/login", append(login, h.Auth.Login)...)
	api.Post("/auth/logout", middleware.OptionalAuthMiddleware(cfg, revocations, log), h.Auth.Logout)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, revocations, log))
	if rdb != nil {
		protected.Use(middleware.RateLimitMiddleware(rdb, "api", cfg.APIRateLimit, cfg.APIRateWindow, log))
	}

	can := func(perm string) fiber.Handler {
		return middleware.RequirePermission(perm, profiles, recorder, log)
	}

	// Actors
	protected.Post("/auth/register", can(rbac.PermManageActors), h.Auth.Register)
	protected.Get("/actors", can(rbac.PermManageActors), h.Actors.ListActors)
	protected.Delete("/actors/:id", can(rbac.PermManageActors), h.Actors.DeleteActor)

	// Dashboard
	protected.Get("/dashboard", can(rbac.PermViewAudit), h.Dashboard.GetDashboard)

	// Systems
	protected.Get("/systems", h.Systems.ListSystems)
	protected.Get("/systems/:id", h.Systems.GetSystem)
	protected.Post("/systems", can(rbac.PermManageSystems), h.Systems.CreateSystem)
	protected.Put("/systems/:id", can(rbac.PermManageSystems), h.Systems.UpdateSystem)
	protected.Delete("/systems/:id", can(rbac.PermManageSystems), h.Systems.DeleteSystem)

	// Profiles
	protected.Get("/profiles", can(rbac.PermManageProfiles), h.Profiles.ListProfiles)
	protected.Get("/profiles/:id", can(rbac.PermManageProfiles), h.Profiles.GetProfile)
	protected.Post("/profiles", can(rbac.PermManageProfiles), h.Profiles.CreateProfile)
	protected.Put("/profiles/:id", can(rbac.PermManageProfiles), h.Profiles.UpdateProfile)
	protected.Delete("/profiles/:id", can(rbac.PermManageProfiles), h.Profiles.DeleteProfile)

	// Audit trail
	protected.Get("/audit/access", can(rbac.PermViewAudit), h.Audit.ListAccessEvents)
	protected.Get("/audit/changes", can(rbac.PermViewAudit), h.Audit.ListChangeEvents)

	// Reports
	protected.Get("/reports/compliance", can(rbac.PermGenerateReport), h.Reports.ComplianceReport)

	// WebSocket
	if h.WS != nil {
		app.Use("/ws", handlers.WSUpgradeMiddleware())
		app.Get("/ws", websocket.New(h.WS.HandleWS))
	}
}

// ErrorHandler renders errors that escape handlers as {"error": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		msg = e.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
