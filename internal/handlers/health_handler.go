package handlers

import (
	"time"

	"github.com/Vistiqx/shopify-automation/internal/database"
	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db     *gorm.DB
	stores *repository.StoreRepository
}

func NewHealthHandler(db *gorm.DB, stores *repository.StoreRepository) *HealthHandler {
	return &HealthHandler{db: db, stores: stores}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx := c.UserContext()
	dbStatus := "ok"
	if err := database.Ping(ctx, h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	var stores int64
	if dbStatus == "ok" {
		stores, _ = h.stores.Count(ctx)
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Stores:    stores,
	})
}
