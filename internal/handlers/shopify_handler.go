package handlers

import (
	"fmt"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// sampleExportSize caps the trial export run.
const sampleExportSize = 5

type ShopifyHandler struct {
	sync        *services.SyncService
	products    *repository.ProductRepository
	collections *repository.CollectionRepository
}

func NewShopifyHandler(sync *services.SyncService, products *repository.ProductRepository, collections *repository.CollectionRepository) *ShopifyHandler {
	return &ShopifyHandler{sync: sync, products: products, collections: collections}
}

func (h *ShopifyHandler) notConfigured(c *fiber.Ctx) error {
	return flash(c, fiber.StatusPreconditionFailed, dto.LevelDanger, shopifyNotConfigured, "/env-vars", nil)
}

func (h *ShopifyHandler) ImportProducts(c *fiber.Ctx) error {
	if !h.sync.IsConfigured() {
		return h.notConfigured(c)
	}
	res := h.sync.ImportProducts(c.UserContext(), tenant.GetScope(c))
	if res.Error != "" {
		return flash(c, fiber.StatusBadGateway, dto.LevelDanger, "Error importing products from Shopify: "+res.Error, "/products", res)
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess,
		fmt.Sprintf("Successfully imported %d products from Shopify", res.Imported), "/products", res)
}

func (h *ShopifyHandler) ImportCollections(c *fiber.Ctx) error {
	if !h.sync.IsConfigured() {
		return h.notConfigured(c)
	}
	res := h.sync.ImportCollections(c.UserContext(), tenant.GetScope(c))
	if res.Error != "" {
		return flash(c, fiber.StatusBadGateway, dto.LevelDanger, "Error importing collections from Shopify: "+res.Error, "/collections", res)
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess,
		fmt.Sprintf("Successfully imported %d collections and updated %d from Shopify", res.Imported, res.Updated), "/collections", res)
}

func (h *ShopifyHandler) ExportProduct(c *fiber.Ctx) error {
	if !h.sync.IsConfigured() {
		return h.notConfigured(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid product id")
	}
	ctx := c.UserContext()
	p, err := h.products.Get(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to fetch product")
	}

	redirect := fmt.Sprintf("/products/%d", id)
	res := h.sync.ExportProduct(ctx, p)
	if !res.OK() {
		return flash(c, fiber.StatusBadGateway, dto.LevelDanger, "Error exporting product to Shopify: "+res.Error, redirect, res)
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Product successfully exported to Shopify", redirect, res)
}

func (h *ShopifyHandler) ExportCollection(c *fiber.Ctx) error {
	if !h.sync.IsConfigured() {
		return h.notConfigured(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid collection id")
	}
	ctx := c.UserContext()
	col, err := h.collections.Get(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to fetch collection")
	}

	redirect := fmt.Sprintf("/collections/%d/view", id)
	res := h.sync.ExportCollection(ctx, tenant.GetScope(c), col)
	if !res.OK() {
		return flash(c, fiber.StatusBadGateway, dto.LevelDanger, "Error exporting collection to Shopify: "+res.Error, redirect, res)
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Collection successfully exported to Shopify", redirect, res)
}

// ExportSample exports up to five not-yet-exported collections as a trial run.
func (h *ShopifyHandler) ExportSample(c *fiber.Ctx) error {
	return h.exportPending(c, sampleExportSize)
}

// ExportAll exports every not-yet-exported collection.
func (h *ShopifyHandler) ExportAll(c *fiber.Ctx) error {
	return h.exportPending(c, 0)
}

func (h *ShopifyHandler) exportPending(c *fiber.Ctx, limit int) error {
	if !h.sync.IsConfigured() {
		return h.notConfigured(c)
	}
	res, err := h.sync.ExportCollections(c.UserContext(), tenant.GetScope(c), limit)
	if err != nil {
		return failErr(c, err, "Failed to export collections")
	}
	if res.Attempted == 0 {
		return flash(c, fiber.StatusOK, dto.LevelWarning,
			"No collections available to export. All collections may already be exported to Shopify.", "/collections", res)
	}

	resp := dto.FlashResponse{Level: dto.LevelSuccess, Redirect: "/collections", Data: res}
	if res.Succeeded > 0 {
		resp.Message = fmt.Sprintf("Successfully exported %d collections to Shopify", res.Succeeded)
	}
	if res.Failed > 0 {
		warning := fmt.Sprintf("Failed to export %d collections to Shopify", res.Failed)
		if resp.Message == "" {
			resp.Level = dto.LevelWarning
			resp.Message = warning
		} else {
			resp.Messages = append(resp.Messages, warning)
		}
	}
	return c.JSON(resp)
}
