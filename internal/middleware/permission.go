package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/models"
	"github.com/itgc-audit/backend/internal/rbac"
	"github.com/itgc-audit/backend/internal/services"
	"go.uber.org/zap"
)

type ProfileLookup interface {
	GetByActor(ctx context.Context, actorID int64) (*models.ActorProfile, error)
}

// RequirePermission admits staff and actors whose profile role grants perm.
// Refusals are recorded as ACCESS_DENIED; admitted write operations as
// ACCESS_GRANTED. Must run after AuthMiddleware.
func RequirePermission(perm string, profiles ProfileLookup, recorder *services.AccessRecorder, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}

		var profile *models.ActorProfile
		if !claims.IsStaff {
			p, err := profiles.GetByActor(c.Context(), claims.ActorID)
			switch {
			case errors.Is(err, services.ErrNotFound):
			case err != nil:
				log.Error("profile lookup failed", zap.Int64("actor_id", claims.ActorID), zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
			default:
				profile = p
			}
		}

		resource := c.Method() + " " + c.Path()
		actorID := claims.ActorID

		if !rbac.Allowed(claims.IsStaff, profile, perm) {
			recorder.RecordAccess(c.Context(), &actorID, false, GetClientAddress(c), resource)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "permission denied"})
		}

		if rbac.IsWriteOperation(perm) {
			recorder.RecordAccess(c.Context(), &actorID, true, GetClientAddress(c), resource)
		}
		return c.Next()
	}
}
