package handlers

import (
	"errors"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return fail(c, fiber.StatusUnauthorized, err.Error())
		case errors.Is(err, services.ErrLoginDisabled):
			return fail(c, fiber.StatusForbidden, err.Error())
		}
		return failErr(c, err, "Internal server error")
	}

	return c.JSON(resp)
}
