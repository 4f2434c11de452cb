package handlers

import (
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/dcsystem/dcs-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles GET /users and GET /users/search?q=
func (h *UserHandler) List(c *fiber.Ctx) error {
	q := httpx.Page(c)
	users, total, err := h.userService.ListUsers(c.UserContext(), q, c.Query("q"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.UserListResponse{
		Users:      dto.NewUserResponses(users),
		Pagination: httpx.Paginated(q, total),
	})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	user, err := h.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	user, err := session.GetUser(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.userService.Stats(c.UserContext())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(stats)
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	user, err := h.userService.CreateUser(c.UserContext(), &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	actorID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}

	var req dto.UpdateUserRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	user, err := h.userService.UpdateUser(c.UserContext(), actorID, id, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	user, err := h.userService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ChangePasswordRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	if err := h.userService.ChangePassword(c.UserContext(), userID, &req); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Password changed successfully"})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	actorID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.userService.DeleteUser(c.UserContext(), actorID, id); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

func (h *UserHandler) BulkDelete(c *fiber.Ctx) error {
	actorID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.IDsRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(h.userService.BulkDeleteUsers(c.UserContext(), actorID, req.IDs))
}
