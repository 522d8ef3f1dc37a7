package handlers

import (
	"errors"
	"fmt"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type StoreHandler struct {
	stores *services.StoreService
}

func NewStoreHandler(stores *services.StoreService) *StoreHandler {
	return &StoreHandler{stores: stores}
}

// List returns every store and the one this session is working in.
func (h *StoreHandler) List(c *fiber.Ctx) error {
	stores, err := h.stores.List(c.UserContext())
	if err != nil {
		return failErr(c, err, "Failed to fetch stores")
	}
	return c.JSON(fiber.Map{
		"stores":        stores,
		"current_store": tenant.GetStore(c),
	})
}

// Create adds a store and makes it the session's current store.
func (h *StoreHandler) Create(c *fiber.Ctx) error {
	var req dto.StoreRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	store, err := h.stores.Create(c.UserContext(), req.Name, req.URL, req.AccessToken)
	if errors.Is(err, repository.ErrDuplicate) {
		return flash(c, fiber.StatusConflict, dto.LevelWarning,
			fmt.Sprintf("A store with URL %q already exists.", req.URL), "/stores", nil)
	}
	if err != nil {
		return failErr(c, err, "Failed to create store")
	}
	if _, err := h.stores.Select(c, store.ID); err != nil {
		return failErr(c, err, "Failed to select store")
	}
	return flash(c, fiber.StatusCreated, dto.LevelSuccess, "Store added successfully and set as current store.", "/stores", store)
}

func (h *StoreHandler) Update(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid store id")
	}
	var req dto.StoreRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	store, err := h.stores.Update(c.UserContext(), id, req.Name, req.URL, req.AccessToken)
	if errors.Is(err, repository.ErrDuplicate) {
		return flash(c, fiber.StatusConflict, dto.LevelWarning,
			fmt.Sprintf("A store with URL %q already exists.", req.URL), "/stores", nil)
	}
	if err != nil {
		return failErr(c, err, "Failed to update store")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Store updated successfully.", "/stores", store)
}

func (h *StoreHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid store id")
	}
	if err := h.stores.Delete(c, id); err != nil {
		return failErr(c, err, "Failed to delete store")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Store deleted successfully.", "/stores", nil)
}

// Select switches the session to another store.
func (h *StoreHandler) Select(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid store id")
	}
	store, err := h.stores.Select(c, id)
	if errors.Is(err, repository.ErrStoreNotFound) {
		return flash(c, fiber.StatusNotFound, dto.LevelDanger, "Store not found.", "/", nil)
	}
	if err != nil {
		return failErr(c, err, "Failed to select store")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Now viewing store: "+store.Name, "/", store)
}
