package middleware

import (
	"crypto/subtle"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/gofiber/fiber/v2"
)

// OperatorRequired guards the maintenance routes. It checks:
// 1. X-Admin-Token against ADMIN_TOKEN
// 2. an operator JWT, when operator login is configured
func OperatorRequired(holder *runtime.Holder) fiber.Handler {
	jwtCheck := JWTProtected(holder)

	return func(c *fiber.Ctx) error {
		cfg := holder.Current().Config

		if cfg.AdminToken != "" {
			if tokenMatches(c.Get("X-Admin-Token"), cfg.AdminToken) {
				return c.Next()
			}
		}

		if cfg.OperatorPasswordHash == "" {
			if cfg.AdminToken == "" {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Message: "Operator access is not configured",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin token required",
			})
		}

		return jwtCheck(c)
	}
}

func tokenMatches(got, want string) bool {
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
