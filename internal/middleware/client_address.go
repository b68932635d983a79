package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/services"
)

const CtxClientAddress = "client_address"

// ClientAddressMiddleware resolves the originating client address once per
// request from the forwarded-for header (first hop) or the peer address.
func ClientAddressMiddleware(forwardedHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var forwarded string
		if forwardedHeader != "" {
			forwarded = c.Get(forwardedHeader)
		}
		c.Locals(CtxClientAddress, services.ResolveClientAddress(forwarded, c.Context().RemoteAddr().String()))
		return c.Next()
	}
}

func GetClientAddress(c *fiber.Ctx) *string {
	addr, _ := c.Locals(CtxClientAddress).(*string)
	return addr
}
