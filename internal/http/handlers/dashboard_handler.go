package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/http/dto"
	"github.com/itgc-audit/backend/internal/services"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	log              *zap.Logger
}

func NewDashboardHandler(dashboardService *services.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, log: log}
}

func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	d, err := h.dashboardService.Snapshot(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: d})
}
