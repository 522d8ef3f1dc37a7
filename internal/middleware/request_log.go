package middleware

import (
	"log/slog"
	"time"

	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// RequestLogger writes one structured line per request. Server errors are
// logged at ERROR so they land in system_logs.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", float64(time.Since(start).Microseconds()) / 1000,
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		}
		if store := tenant.GetStore(c); store != nil {
			attrs = append(attrs, "store_id", store.ID)
		}
		if chainErr != nil {
			attrs = append(attrs, "error", chainErr.Error())
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			slog.Error("request failed", attrs...)
		case status >= fiber.StatusBadRequest:
			slog.Warn("request rejected", attrs...)
		default:
			slog.Info("request completed", attrs...)
		}
		return nil
	}
}
