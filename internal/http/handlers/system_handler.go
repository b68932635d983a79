package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/http/dto"
	"github.com/itgc-audit/backend/internal/middleware"
	"github.com/itgc-audit/backend/internal/services"
	"go.uber.org/zap"
)

type SystemHandler struct {
	systemService *services.SystemService
	log           *zap.Logger
}

func NewSystemHandler(systemService *services.SystemService, log *zap.Logger) *SystemHandler {
	return &SystemHandler{systemService: systemService, log: log}
}

func (h *SystemHandler) ListSystems(c *fiber.Ctx) error {
	systems, err := h.systemService.List(c.Context(), c.Query("q"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: systems})
}

func (h *SystemHandler) GetSystem(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid system id")
	}

	sys, err := h.systemService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: sys})
}

func (h *SystemHandler) CreateSystem(c *fiber.Ctx) error {
	var req dto.SystemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sys, err := h.systemService.Create(c.Context(), middleware.ActorIDPtr(c), services.SystemInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: sys})
}

func (h *SystemHandler) UpdateSystem(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid system id")
	}

	var req dto.SystemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sys, err := h.systemService.Update(c.Context(), middleware.ActorIDPtr(c), id, services.SystemInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: sys})
}

func (h *SystemHandler) DeleteSystem(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid system id")
	}

	if err := h.systemService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
