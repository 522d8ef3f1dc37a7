package middleware

import (
	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows the configured origins. The store selection lives in a session
// cookie, so credentials are allowed whenever the origins are explicit; fiber
// rejects credentials combined with a wildcard origin.
func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Admin-Token",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    fiber.HeaderXRequestID,
		AllowCredentials: cfg.CORSOrigins != "" && cfg.CORSOrigins != "*",
	})
}
