package middleware

import (
	"log/slog"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// StoreContext resolves the current store once per request: the store saved
// in the session, else the first store, else no store (all-stores scope).
func StoreContext(stores *services.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, err := stores.Resolve(c)
		if err != nil {
			slog.Error("failed to resolve current store", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Could not determine the current store",
			})
		}
		tenant.SetCurrent(c, store)
		return c.Next()
	}
}
