package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/http/dto"
	"github.com/itgc-audit/backend/internal/middleware"
	"github.com/itgc-audit/backend/internal/services"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP statuses. Unknown errors are logged
// and reported as a generic 500.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal server error"

	var oerr *services.ObservationError
	switch {
	case errors.Is(err, services.ErrValidation):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, msg = fiber.StatusNotFound, "not found"
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = fiber.StatusUnauthorized, services.ErrInvalidCredentials.Error()
	case errors.Is(err, services.ErrProfileExists), errors.Is(err, services.ErrUsernameTaken):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.As(err, &oerr):
		log.Error("change not recorded, write aborted",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		msg = "change could not be recorded in the audit trail"
	default:
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(c)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(c)})
}

func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
