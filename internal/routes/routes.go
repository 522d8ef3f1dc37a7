package routes

import (
	"time"

	"github.com/Vistiqx/shopify-automation/internal/handlers"
	"github.com/Vistiqx/shopify-automation/internal/middleware"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Dashboard  *handlers.DashboardHandler
	Product    *handlers.ProductHandler
	Tag        *handlers.TagHandler
	Collection *handlers.CollectionHandler
	EnvVar     *handlers.EnvVarHandler
	Store      *handlers.StoreHandler
	Shopify    *handlers.ShopifyHandler
	Debug      *handlers.DebugHandler
	Migrate    *handlers.MigrateHandler
}

func Setup(app *fiber.App, holder *runtime.Holder, stores *services.StoreService, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no store context required)
	api.Get("/health", h.Health.Check)

	// Operator login: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", h.Auth.Login)

	// Everything below runs against the session's current store
	api.Use(middleware.StoreContext(stores))

	api.Get("/dashboard", h.Dashboard.Index)

	// Static segments are registered before :id so they are not captured by it
	api.Get("/products", h.Product.List)
	api.Get("/products/all", h.Product.All)
	api.Post("/products", h.Product.Create)
	api.Post("/products/auto-tag", h.Product.AutoTag)
	api.Get("/products/:id", h.Product.Get)
	api.Put("/products/:id", h.Product.Update)
	api.Delete("/products/:id", h.Product.Delete)
	api.Get("/products/:id/tags", h.Product.Tags)
	api.Post("/products/:id/tags", h.Product.AddTag)
	api.Delete("/products/:id/tags/:tag_id", h.Product.RemoveTag)

	api.Get("/tags", h.Tag.List)
	api.Delete("/tags/:id", h.Tag.Delete)

	api.Get("/collections", h.Collection.List)
	api.Get("/collections/all", h.Collection.All)
	api.Post("/collections", h.Collection.Create)
	api.Post("/collections/create-from-tags", h.Collection.CreateFromTags)
	api.Post("/collections/delete-all", h.Collection.DeleteAll)
	api.Get("/collections/:id", h.Collection.Get)
	api.Get("/collections/:id/view", h.Collection.View)
	api.Put("/collections/:id", h.Collection.Update)
	api.Delete("/collections/:id", h.Collection.Delete)


	api.Get("/stores", h.Store.List)
	api.Post("/stores", h.Store.Create)
	api.Put("/stores/:id", h.Store.Update)
	api.Delete("/stores/:id", h.Store.Delete)
	api.Post("/stores/:id/select", h.Store.Select)

	shop := api.Group("/shopify")
	shop.Post("/import-products", h.Shopify.ImportProducts)
	shop.Post("/import-collections", h.Shopify.ImportCollections)
	shop.Post("/export-product/:id", h.Shopify.ExportProduct)
	shop.Post("/export-collection/:id", h.Shopify.ExportCollection)
	shop.Post("/export-collections/sample", h.Shopify.ExportSample)
	shop.Post("/export-all-collections", h.Shopify.ExportAll)

	// Credentials and maintenance (operator only)
	operator := middleware.OperatorRequired(holder)
	envVars := api.Group("/env-vars", operator)
	envVars.Get("/", h.EnvVar.List)
	envVars.Post("/", h.EnvVar.Create)
	envVars.Put("/:id", h.EnvVar.Update)
	envVars.Delete("/:id", h.EnvVar.Delete)

	api.Post("/migrate-database", operator, h.Migrate.Migrate)
	api.Get("/debug/stores", operator, h.Debug.Stores)
	api.Get("/debug/env-vars", operator, h.Debug.EnvVars)
}
