package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/Vistiqx/shopify-automation/internal/database"
	"github.com/Vistiqx/shopify-automation/internal/handlers"
	"github.com/Vistiqx/shopify-automation/internal/logging"
	"github.com/Vistiqx/shopify-automation/internal/middleware"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/routes"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.AppEnv)

	if cfg.AppEnv == "production" && cfg.SecretKey == "dev-secret-key" {
		slog.Error("SECRET_KEY must be set in production")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.WithDatabase(cfg.AppEnv, database.DB)

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Repositories
	productRepo := repository.NewProductRepository(database.DB)
	tagRepo := repository.NewTagRepository(database.DB)
	collectionRepo := repository.NewCollectionRepository(database.DB)
	storeRepo := repository.NewStoreRepository(database.DB)
	envVarRepo := repository.NewEnvVarRepository(database.DB)

	// Runtime configuration: stored env vars override the process environment
	ctx := context.Background()
	holder := runtime.NewHolder(cfg, envVarRepo)
	envVarService := services.NewEnvVarService(envVarRepo, holder)
	if err := envVarService.SeedDefaults(ctx, cfg); err != nil {
		slog.Error("failed to seed environment variables", "error", err)
		os.Exit(1)
	}

	// Services
	sessions := session.NewManager(cfg.RedisURL, cfg.SessionExpiration, cfg.AppEnv == "production")
	storeService := services.NewStoreService(storeRepo, sessions)
	current := holder.Current().Config
	if _, err := storeService.EnsureDefault(ctx, current.ShopifyStoreURL, current.ShopifyAccessToken); err != nil {
		slog.Error("failed to create default store", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(holder)
	syncService := services.NewSyncService(productRepo, tagRepo, collectionRepo, holder)
	workflowService := services.NewWorkflowService(database.DB, productRepo, tagRepo, collectionRepo, syncService, holder)
	collectionService := services.NewCollectionService(collectionRepo, productRepo, tagRepo)

	// Handlers
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Health:     handlers.NewHealthHandler(database.DB, storeRepo),
		Dashboard:  handlers.NewDashboardHandler(productRepo, collectionRepo, storeService),
		Product:    handlers.NewProductHandler(productRepo, tagRepo, workflowService),
		Tag:        handlers.NewTagHandler(tagRepo),
		Collection: handlers.NewCollectionHandler(collectionRepo, collectionService, workflowService),
		EnvVar:     handlers.NewEnvVarHandler(envVarService),
		Store:      handlers.NewStoreHandler(storeService),
		Shopify:    handlers.NewShopifyHandler(syncService, productRepo, collectionRepo),
		Debug:      handlers.NewDebugHandler(storeService, envVarService, holder),
		Migrate:    handlers.NewMigrateHandler(database.DB),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
		// Auto-tagging large batches waits on the LLM for each batch
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, holder, storeService, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
