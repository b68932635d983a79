package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/http/dto"
	"github.com/itgc-audit/backend/internal/middleware"
	"github.com/itgc-audit/backend/internal/services"
	"go.uber.org/zap"
)

type ActorHandler struct {
	actorService *services.ActorService
	log          *zap.Logger
}

func NewActorHandler(actorService *services.ActorService, log *zap.Logger) *ActorHandler {
	return &ActorHandler{actorService: actorService, log: log}
}

func (h *ActorHandler) ListActors(c *fiber.Ctx) error {
	actors, err := h.actorService.List(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: actors})
}

func (h *ActorHandler) DeleteActor(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid actor id")
	}
	if id == middleware.GetActorID(c) {
		return badRequest(c, "cannot delete yourself")
	}

	if err := h.actorService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
