package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/http/dto"
	"github.com/itgc-audit/backend/internal/middleware"
	"github.com/itgc-audit/backend/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  *services.AuthService
	actorService *services.ActorService
	log          *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, actorService *services.ActorService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, actorService: actorService, log: log}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "username and password are required")
	}

	res, err := h.authService.Login(c.Context(), req.Username, req.Password, middleware.GetClientAddress(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.AuthResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		Actor:     res.Actor,
	})
}

// Logout always succeeds for anonymous callers; only an authenticated caller
// produces a LOGOUT event.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.Context(), middleware.GetClaims(c), middleware.GetClientAddress(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	actor, err := h.actorService.Register(c.Context(), req.Username, req.Password, req.IsStaff)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: actor})
}
