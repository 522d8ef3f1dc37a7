package handlers

import (
	"log/slog"

	"github.com/Vistiqx/shopify-automation/internal/database"
	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MigrateHandler reruns the schema migration on demand.
type MigrateHandler struct {
	db *gorm.DB
}

func NewMigrateHandler(db *gorm.DB) *MigrateHandler {
	return &MigrateHandler{db: db}
}

func (h *MigrateHandler) Migrate(c *fiber.Ctx) error {
	if err := database.Migrate(h.db.WithContext(c.UserContext())); err != nil {
		slog.Error("database migration failed", "action", "migrate", "error", err)
		return flash(c, fiber.StatusInternalServerError, dto.LevelDanger,
			"Database migration encountered errors. Check the logs for details.", "/collections", nil)
	}
	slog.Info("database migration completed", "action", "migrate")
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Database migration completed successfully.", "/collections", nil)
}
