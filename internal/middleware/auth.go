package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/auth"
	"github.com/itgc-audit/backend/internal/config"
	"go.uber.org/zap"
)

const (
	CtxActorID = "actor_id"
	CtxClaims  = "claims"
)

// AuthMiddleware requires a valid, unrevoked bearer token.
func AuthMiddleware(cfg *config.Config, revocations auth.RevocationStore, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, ok := verifyToken(c, cfg, revocations, log, tokenStr)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		setClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's claims when a valid token is
// present and lets the request through either way.
func OptionalAuthMiddleware(cfg *config.Config, revocations auth.RevocationStore, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if tokenStr != "" && tokenStr != c.Get("Authorization") {
			if claims, ok := verifyToken(c, cfg, revocations, log, tokenStr); ok {
				setClaims(c, claims)
			}
		}
		return c.Next()
	}
}

// verifyToken fails closed when the revocation store cannot be reached.
func verifyToken(c *fiber.Ctx, cfg *config.Config, revocations auth.RevocationStore, log *zap.Logger, tokenStr string) (*auth.Claims, bool) {
	claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
	if err != nil {
		log.Debug("jwt parse error", zap.Error(err))
		return nil, false
	}

	if revocations != nil {
		revoked, err := auth.Revoked(c.Context(), revocations, claims)
		if err != nil {
			log.Error("revocation check failed", zap.Error(err))
			return nil, false
		}
		if revoked {
			return nil, false
		}
	}
	return claims, true
}

func setClaims(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals(CtxClaims, claims)
	c.Locals(CtxActorID, claims.ActorID)
}

func GetClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(CtxClaims).(*auth.Claims)
	return claims
}

func GetActorID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(CtxActorID).(int64)
	return id
}

// ActorIDPtr is GetActorID for attribution fields; nil when unauthenticated.
func ActorIDPtr(c *fiber.Ctx) *int64 {
	id, ok := c.Locals(CtxActorID).(int64)
	if !ok {
		return nil
	}
	return &id
}
