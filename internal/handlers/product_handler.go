package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	products *repository.ProductRepository
	tags     *repository.TagRepository
	workflow *services.WorkflowService
}

func NewProductHandler(products *repository.ProductRepository, tags *repository.TagRepository, workflow *services.WorkflowService) *ProductHandler {
	return &ProductHandler{products: products, tags: tags, workflow: workflow}
}

// List returns one page of the current store's products, newest first.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, perPage := pageQuery(c)
	products, total, err := h.products.List(c.UserContext(), tenant.GetScope(c), page, perPage)
	if err != nil {
		return failErr(c, err, "Failed to fetch products")
	}
	return c.JSON(dto.PageResponse{
		Items:   dto.NewProductResponses(products),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// All returns every product in the current store without paging.
func (h *ProductHandler) All(c *fiber.Ctx) error {
	products, err := h.products.All(c.UserContext(), tenant.GetScope(c))
	if err != nil {
		return failErr(c, err, "Failed to fetch products")
	}
	return c.JSON(dto.NewProductResponses(products))
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid product id")
	}
	p, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return failErr(c, err, "Failed to fetch product")
	}
	return c.JSON(dto.NewProductResponse(p))
}

// Create adds a product to the current store and auto-tags it when the
// tagging key is set.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	p, tags, err := h.workflow.AddProduct(c.UserContext(), tenant.GetScope(c), req.Title, req.Description, req.Price, req.ImageURL)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPrice) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		return failErr(c, err, "Failed to create product")
	}

	if len(tags) > 0 {
		return flash(c, fiber.StatusCreated, dto.LevelSuccess,
			"Product added and auto-tagged with: "+strings.Join(tags, ", "),
			"/products", dto.NewProductResponse(p))
	}
	return flash(c, fiber.StatusCreated, dto.LevelWarning,
		"Product added. Tagging API key not set, skipping auto-tagging.",
		"/products", dto.NewProductResponse(p))
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid product id")
	}
	var req dto.ProductRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid price")
	}

	ctx := c.UserContext()
	p, err := h.products.Get(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to fetch product")
	}
	p.Title = strings.TrimSpace(req.Title)
	p.Description = req.Description
	p.Price = price
	p.ImageURL = strings.TrimSpace(req.ImageURL)
	if err := h.products.Update(ctx, p); err != nil {
		return failErr(c, err, "Failed to update product")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Product updated successfully", "/products", dto.NewProductResponse(p))
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid product id")
	}
	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return failErr(c, err, "Failed to delete product")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Product deleted successfully", "/products", nil)
}

// Tags lists the tags attached to a product.
func (h *ProductHandler) Tags(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid product id")
	}
	p, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return failErr(c, err, "Failed to fetch product")
	}
	return c.JSON(p.Tags)
}

// AddTag attaches a tag by name, creating it in the current store if needed.
func (h *ProductHandler) AddTag(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid product id")
	}
	var req dto.ProductTagRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail(c, fiber.StatusBadRequest, "Tag name is required")
	}

	ctx := c.UserContext()
	p, err := h.products.Get(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to fetch product")
	}
	tag, _, err := h.tags.ResolveOrCreate(ctx, tenant.GetScope(c), name)
	if err != nil {
		return failErr(c, err, "Failed to create tag")
	}
	added, err := h.products.AttachTag(ctx, p, tag)
	if err != nil {
		return failErr(c, err, "Failed to add tag")
	}

	redirect := fmt.Sprintf("/products/%d/tags", p.ID)
	if !added {
		return flash(c, fiber.StatusOK, dto.LevelWarning,
			fmt.Sprintf("Tag %q already exists for this product", name), redirect, tag)
	}
	return flash(c, fiber.StatusCreated, dto.LevelSuccess,
		fmt.Sprintf("Tag %q added to product", name), redirect, tag)
}

func (h *ProductHandler) RemoveTag(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid product id")
	}
	tagID, ok := idParam(c, "tag_id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid tag id")
	}

	ctx := c.UserContext()
	p, err := h.products.Get(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to fetch product")
	}
	tag, err := h.tags.Get(ctx, tagID)
	if err != nil {
		return failErr(c, err, "Failed to fetch tag")
	}
	removed, err := h.products.DetachTag(ctx, p, tag)
	if err != nil {
		return failErr(c, err, "Failed to remove tag")
	}

	redirect := fmt.Sprintf("/products/%d/tags", p.ID)
	if !removed {
		return flash(c, fiber.StatusOK, dto.LevelInfo,
			fmt.Sprintf("Tag %q is not attached to this product", tag.Name), redirect, nil)
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess,
		fmt.Sprintf("Tag %q removed from product", tag.Name), redirect, nil)
}

// AutoTag generates tags for the selected products and exports the tagged
// ones to Shopify when it is configured.
func (h *ProductHandler) AutoTag(c *fiber.Ctx) error {
	var req dto.AutoTagRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.workflow.AutoTagAndExport(c.UserContext(), tenant.GetScope(c), req.ProductIDs)
	switch {
	case errors.Is(err, services.ErrNoProductsSelected):
		return flash(c, fiber.StatusBadRequest, dto.LevelWarning, "No products selected for auto-tagging", "/products", nil)
	case errors.Is(err, services.ErrTaggingNotConfigured):
		return flash(c, fiber.StatusPreconditionFailed, dto.LevelDanger,
			"Tagging API key not set. Please set it in environment variables.", "/env-vars", nil)
	case errors.Is(err, services.ErrNoProductsFound):
		return flash(c, fiber.StatusNotFound, dto.LevelWarning, "No valid products found for auto-tagging", "/products", nil)
	case err != nil:
		return failErr(c, err, "Auto-tagging failed")
	}

	resp := dto.FlashResponse{Level: dto.LevelSuccess, Redirect: "/products", Data: res}
	if res.ExportSkipped {
		resp.Message = fmt.Sprintf("Successfully auto-tagged %d products. Shopify integration not configured, skipping export.", res.Tagged)
	} else {
		resp.Message = fmt.Sprintf("Successfully auto-tagged %d products and exported %d to Shopify", res.Tagged, res.Exported)
		if res.ExportErrors > 0 {
			resp.Messages = append(resp.Messages, fmt.Sprintf("Warning: %d products failed to export to Shopify", res.ExportErrors))
		}
	}
	if res.Failed > 0 {
		resp.Messages = append(resp.Messages, fmt.Sprintf("Tags for %d products could not be saved", res.Failed))
	}
	return c.JSON(resp)
}
