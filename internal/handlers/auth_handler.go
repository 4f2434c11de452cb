package handlers

import (
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/dcsystem/dcs-backend/internal/session"
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
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.LogoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return httpx.Fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	if err := h.authService.Logout(c.UserContext(), userID, req.RefreshToken); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	resp, err := h.authService.Me(c.UserContext(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(resp)
}
