package middleware

import (
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/dcsystem/dcs-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// RequirePermission lets the request through only when the caller holds
// slug through at least one role. It must run after Identity.
func RequirePermission(authz *services.Authorizer, slug string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := session.GetUserID(c)
		if err != nil {
			return unauthorized(c, "Unauthorized")
		}
		if err := authz.CheckPermission(c.UserContext(), userID, slug); err != nil {
			return httpx.Error(c, err)
		}
		return c.Next()
	}
}

// RequireRole lets the request through only when the caller holds a role
// named exactly roleName.
func RequireRole(authz *services.Authorizer, roleName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := session.GetUserID(c)
		if err != nil {
			return unauthorized(c, "Unauthorized")
		}
		if err := authz.CheckRole(c.UserContext(), userID, roleName); err != nil {
			return httpx.Error(c, err)
		}
		return c.Next()
	}
}
