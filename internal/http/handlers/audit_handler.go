package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/http/dto"
	"github.com/itgc-audit/backend/internal/repositories"
	"github.com/itgc-audit/backend/internal/services"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditService *services.AuditService
	log          *zap.Logger
}

func NewAuditHandler(auditService *services.AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, log: log}
}

func (h *AuditHandler) ListAccessEvents(c *fiber.Ctx) error {
	f, err := parseAuditFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	events, err := h.auditService.ListAccessEvents(c.Context(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Data: events, Limit: f.Limit, Offset: f.Offset})
}

func (h *AuditHandler) ListChangeEvents(c *fiber.Ctx) error {
	f, err := parseAuditFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	events, err := h.auditService.ListChangeEvents(c.Context(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Data: events, Limit: f.Limit, Offset: f.Offset})
}

// parseAuditFilter reads event_type (comma-separated), actor_id, entity_kind,
// entity_id, since, until (RFC 3339 or YYYY-MM-DD), limit and offset.
func parseAuditFilter(c *fiber.Ctx) (repositories.AuditFilter, error) {
	f := repositories.AuditFilter{
		Limit:      repositories.DefaultAuditLimit,
		EntityKind: strings.TrimSpace(c.Query("entity_kind")),
	}

	if v := c.Query("event_type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				f.Types = append(f.Types, t)
			}
		}
	}

	var err error
	if f.ActorID, err = queryInt64(c, "actor_id"); err != nil {
		return f, err
	}
	if f.EntityID, err = queryInt64(c, "entity_id"); err != nil {
		return f, err
	}
	if f.Since, err = queryTime(c, "since"); err != nil {
		return f, err
	}
	if f.Until, err = queryTime(c, "until"); err != nil {
		return f, err
	}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return f, fmt.Errorf("limit must be a positive integer")
		}
		f.Limit = min(n, repositories.MaxAuditLimit)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("offset must be a non-negative integer")
		}
		f.Offset = n
	}

	return f, nil
}

func queryInt64(c *fiber.Ctx, key string) (*int64, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &n, nil
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD", key)
}
