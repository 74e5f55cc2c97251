package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/boutique-backend/internal/user"
)

// RequireAdmin lets the request through only when the JWT carries the ADMIN role.
func RequireAdmin(c *fiber.Ctx) error {
	if _, err := user.GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if user.GetRoleFromCtx(c) != user.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}
	return c.Next()
}
