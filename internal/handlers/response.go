package handlers

import (
	"errors"
	"log/slog"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/gofiber/fiber/v2"
)

const shopifyNotConfigured = "Shopify integration not configured. Please set Shopify credentials in environment variables."

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// failErr maps known domain errors to a status; anything else is a 500 with
// the generic message and is logged.
func failErr(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrTagNotFound),
		errors.Is(err, repository.ErrCollectionNotFound),
		errors.Is(err, repository.ErrStoreNotFound),
		errors.Is(err, repository.ErrEnvVarNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrSlugExhausted),
		errors.Is(err, services.ErrProtectedEnvVar):
		return fail(c, fiber.StatusConflict, err.Error())
	}
	slog.Error(message, "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, message)
}

func flash(c *fiber.Ctx, status int, level, message, redirect string, data any) error {
	return c.Status(status).JSON(dto.FlashResponse{
		Level:    level,
		Message:  message,
		Redirect: redirect,
		Data:     data,
	})
}

// parseBody decodes and validates the request body into req. On failure the
// error response has already been written and ok is false.
func parseBody(c *fiber.Ctx, req any) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if verr := dto.Validate(req); verr != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	return true, nil
}

func idParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func pageQuery(c *fiber.Ctx) (page, perPage int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage = c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
