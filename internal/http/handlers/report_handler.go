package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/http/dto"
	"github.com/itgc-audit/backend/internal/middleware"
	"github.com/itgc-audit/backend/internal/report"
	"github.com/itgc-audit/backend/internal/services"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *services.ReportService
	log           *zap.Logger
}

func NewReportHandler(reportService *services.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, log: log}
}

// ComplianceReport streams the PDF as an attachment. Any failure is a generic
// 500 with no partial document.
func (h *ReportHandler) ComplianceReport(c *fiber.Ctx) error {
	out, err := h.reportService.Generate(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:     "failed to generate report",
			RequestID: middleware.GetRequestID(c),
		})
	}

	c.Attachment(report.Filename)
	c.Set(fiber.HeaderContentType, report.ContentType)
	return c.Send(out)
}
