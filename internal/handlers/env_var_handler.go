package handlers

import (
	"errors"
	"fmt"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/gofiber/fiber/v2"
)

type EnvVarHandler struct {
	service *services.EnvVarService
}

func NewEnvVarHandler(service *services.EnvVarService) *EnvVarHandler {
	return &EnvVarHandler{service: service}
}

func (h *EnvVarHandler) List(c *fiber.Ctx) error {
	vars, err := h.service.List(c.UserContext())
	if err != nil {
		return failErr(c, err, "Failed to fetch environment variables")
	}
	for i := range vars {
		vars[i].Value = mask(vars[i].Value)
	}
	return c.JSON(vars)
}

// Create stores a new variable and applies it to the running process.
func (h *EnvVarHandler) Create(c *fiber.Ctx) error {
	var req dto.EnvVarRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	v, err := h.service.Create(c.UserContext(), req.Key, req.Value, req.Description)
	if errors.Is(err, repository.ErrDuplicate) {
		return flash(c, fiber.StatusConflict, dto.LevelWarning,
			fmt.Sprintf("Environment variable %q already exists. Please edit it instead.", req.Key), "/env-vars", nil)
	}
	if err != nil {
		return failErr(c, err, "Failed to create environment variable")
	}
	return flash(c, fiber.StatusCreated, dto.LevelSuccess, "Environment variable added successfully", "/env-vars", masked(v))
}

func (h *EnvVarHandler) Update(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid environment variable id")
	}
	var req dto.EnvVarRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	v, err := h.service.Update(c.UserContext(), id, req.Key, req.Value, req.Description)
	if errors.Is(err, services.ErrProtectedEnvVar) {
		return flash(c, fiber.StatusConflict, dto.LevelDanger, "Default environment variables cannot be renamed.", "/env-vars", nil)
	}
	if err != nil {
		return failErr(c, err, "Failed to update environment variable")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Environment variable updated successfully", "/env-vars", masked(v))
}

func (h *EnvVarHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid environment variable id")
	}

	err := h.service.Delete(c.UserContext(), id)
	if errors.Is(err, services.ErrProtectedEnvVar) {
		return flash(c, fiber.StatusConflict, dto.LevelDanger,
			"Cannot delete a default environment variable. You can edit it instead.", "/env-vars", nil)
	}
	if err != nil {
		return failErr(c, err, "Failed to delete environment variable")
	}
	return flash(c, fiber.StatusOK, dto.LevelSuccess, "Environment variable deleted successfully", "/env-vars", nil)
}

// masked copies v with its value cut down by mask.
func masked(v *models.EnvVar) models.EnvVar {
	out := *v
	out.Value = mask(out.Value)
	return out
}
