package handlers

import (
	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type TagHandler struct {
	tags *repository.TagRepository
}

func NewTagHandler(tags *repository.TagRepository) *TagHandler {
	return &TagHandler{tags: tags}
}

// List returns one page of tags with their product counts, by name.
func (h *TagHandler) List(c *fiber.Ctx) error {
	page, perPage := pageQuery(c)
	tags, total, err := h.tags.ListWithCounts(c.UserContext(), tenant.GetScope(c), page, perPage)
	if err != nil {
		return failErr(c, err, "Failed to fetch tags")
	}
	return c.JSON(dto.PageResponse{Items: tags, Total: total, Page: page, PerPage: perPage})
}

func (h *TagHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid tag id")
	}
	if err := h.tags.Delete(c.UserContext(), id); err != nil {
		return failErr(c, err, "Failed to delete tag")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Tag deleted successfully", "/tags", nil)
}
