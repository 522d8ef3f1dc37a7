package handlers

import (
	"fmt"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type CollectionHandler struct {
	collections *repository.CollectionRepository
	service     *services.CollectionService
	workflow    *services.WorkflowService
}

func NewCollectionHandler(collections *repository.CollectionRepository, service *services.CollectionService, workflow *services.WorkflowService) *CollectionHandler {
	return &CollectionHandler{collections: collections, service: service, workflow: workflow}
}

func (h *CollectionHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	scope := tenant.GetScope(c)
	page, perPage := pageQuery(c)

	collections, total, err := h.collections.List(ctx, scope, page, perPage)
	if err != nil {
		return failErr(c, err, "Failed to fetch collections")
	}
	items := make([]dto.CollectionResponse, len(collections))
	for i := range collections {
		count, err := h.collections.MemberCount(ctx, scope, &collections[i])
		if err != nil {
			return failErr(c, err, "Failed to count collection products")
		}
		items[i] = dto.NewCollectionResponse(&collections[i], count)
	}
	return c.JSON(dto.PageResponse{Items: items, Total: total, Page: page, PerPage: perPage})
}

// All returns every collection in the current store without paging.
func (h *CollectionHandler) All(c *fiber.Ctx) error {
	ctx := c.UserContext()
	scope := tenant.GetScope(c)

	collections, err := h.collections.All(ctx, scope)
	if err != nil {
		return failErr(c, err, "Failed to fetch collections")
	}
	items := make([]dto.CollectionResponse, len(collections))
	for i := range collections {
		count, err := h.collections.MemberCount(ctx, scope, &collections[i])
		if err != nil {
			return failErr(c, err, "Failed to count collection products")
		}
		items[i] = dto.NewCollectionResponse(&collections[i], count)
	}
	return c.JSON(items)
}

func (h *CollectionHandler) Get(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid collection id")
	}
	ctx := c.UserContext()
	col, err := h.collections.Get(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to fetch collection")
	}
	count, err := h.collections.MemberCount(ctx, tenant.GetScope(c), col)
	if err != nil {
		return failErr(c, err, "Failed to count collection products")
	}
	return c.JSON(dto.NewCollectionResponse(col, count))
}

// View returns a collection with its members. Smart collections list the
// current store's products carrying the tag right now.
func (h *CollectionHandler) View(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid collection id")
	}
	ctx := c.UserContext()
	col, err := h.collections.Get(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to fetch collection")
	}
	members, err := h.collections.Members(ctx, tenant.GetScope(c), col)
	if err != nil {
		return failErr(c, err, "Failed to fetch collection products")
	}
	return c.JSON(fiber.Map{
		"collection": dto.NewCollectionResponse(col, int64(len(members))),
		"products":   dto.NewProductResponses(members),
	})
}

func (h *CollectionHandler) Create(c *fiber.Ctx) error {
	var req dto.CollectionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	ctx := c.UserContext()
	scope := tenant.GetScope(c)

	col, err := h.service.Create(ctx, scope, &req)
	if err != nil {
		return failErr(c, err, "Failed to create collection")
	}
	count, err := h.collections.MemberCount(ctx, scope, col)
	if err != nil {
		return failErr(c, err, "Failed to count collection products")
	}
	return flash(c, fiber.StatusCreated, dto.LevelSuccess, "Collection created successfully", "/collections", dto.NewCollectionResponse(col, count))
}

func (h *CollectionHandler) Update(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid collection id")
	}
	var req dto.CollectionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	ctx := c.UserContext()
	scope := tenant.GetScope(c)

	col, err := h.service.Update(ctx, scope, id, &req)
	if err != nil {
		return failErr(c, err, "Failed to update collection")
	}
	count, err := h.collections.MemberCount(ctx, scope, col)
	if err != nil {
		return failErr(c, err, "Failed to count collection products")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Collection updated successfully", "/collections", dto.NewCollectionResponse(col, count))
}

func (h *CollectionHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid collection id")
	}
	if err := h.collections.Delete(c.UserContext(), id); err != nil {
		return failErr(c, err, "Failed to delete collection")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Collection deleted successfully", "/collections", nil)
}

// DeleteAll removes every collection in the current store.
func (h *CollectionHandler) DeleteAll(c *fiber.Ctx) error {
	n, err := h.collections.DeleteAll(c.UserContext(), tenant.GetScope(c))
	if err != nil {
		return failErr(c, err, "Failed to delete collections")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, fmt.Sprintf("Successfully deleted %d collections", n), "/collections", fiber.Map{"deleted": n})
}

// CreateFromTags builds smart collections from qualifying tags and category
// collections from untagged products.
func (h *CollectionHandler) CreateFromTags(c *fiber.Ctx) error {
	req := dto.CreateCollectionsRequest{ExcludeImportedTags: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	res, err := h.workflow.CreateCollectionsFromTags(c.UserContext(), tenant.GetScope(c), req.ExcludeImportedTags)
	if err != nil {
		return failErr(c, err, "Failed to create collections")
	}

	resp := dto.FlashResponse{Level: dto.LevelSuccess, Redirect: "/collections", Data: res}
	if res.Created > 0 {
		resp.Message = fmt.Sprintf("Successfully created %d new collections", res.Created)
	} else {
		resp.Level = dto.LevelInfo
		resp.Message = "No new collections created. Collections already exist for all tags with products."
	}
	if res.AnalyzedUntagged > 0 {
		resp.Messages = append(resp.Messages, fmt.Sprintf("Analyzed %d untagged products for collections", res.AnalyzedUntagged))
	}
	return c.JSON(resp)
}
