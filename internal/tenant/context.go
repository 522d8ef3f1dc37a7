package tenant

import (
	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	scopeKey = "store_scope"
	storeKey = "current_store"
)

// SetCurrent records the resolved store for the rest of the request.
// store may be nil when no stores exist.
func SetCurrent(c *fiber.Ctx, store *models.Store) {
	if store == nil {
		c.Locals(scopeKey, AllStores())
		c.Locals(storeKey, (*models.Store)(nil))
		return
	}
	c.Locals(scopeKey, ForStore(store.ID))
	c.Locals(storeKey, store)
}

// GetScope extracts the store scope from Fiber context locals.
func GetScope(c *fiber.Ctx) Scope {
	if s, ok := c.Locals(scopeKey).(Scope); ok {
		return s
	}
	return AllStores()
}

// GetStore returns the current store, or nil.
func GetStore(c *fiber.Ctx) *models.Store {
	if s, ok := c.Locals(storeKey).(*models.Store); ok {
		return s
	}
	return nil
}
