package handlers

import (
	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

const (
	dashboardProducts    = 20
	dashboardCollections = 10
)

// DashboardHandler serves the landing overview for the current store.
type DashboardHandler struct {
	products    *repository.ProductRepository
	collections *repository.CollectionRepository
	stores      *services.StoreService
}

func NewDashboardHandler(products *repository.ProductRepository, collections *repository.CollectionRepository, stores *services.StoreService) *DashboardHandler {
	return &DashboardHandler{products: products, collections: collections, stores: stores}
}

func (h *DashboardHandler) Index(c *fiber.Ctx) error {
	ctx := c.UserContext()
	scope := tenant.GetScope(c)

	products, productTotal, err := h.products.List(ctx, scope, 1, dashboardProducts)
	if err != nil {
		return failErr(c, err, "Failed to fetch products")
	}
	collections, collectionTotal, err := h.collections.List(ctx, scope, 1, dashboardCollections)
	if err != nil {
		return failErr(c, err, "Failed to fetch collections")
	}
	stores, err := h.stores.List(ctx)
	if err != nil {
		return failErr(c, err, "Failed to fetch stores")
	}

	recent := make([]dto.CollectionResponse, len(collections))
	for i := range collections {
		count, err := h.collections.MemberCount(ctx, scope, &collections[i])
		if err != nil {
			return failErr(c, err, "Failed to count collection products")
		}
		recent[i] = dto.NewCollectionResponse(&collections[i], count)
	}

	return c.JSON(fiber.Map{
		"current_store":    tenant.GetStore(c),
		"stores":           stores,
		"products":         dto.NewProductResponses(products),
		"product_total":    productTotal,
		"collections":      recent,
		"collection_total": collectionTotal,
	})
}
