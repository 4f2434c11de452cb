package category

import (
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	service *CategoryService
}

func NewCategoryHandler(service *CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	skip, limit := httpx.Window(c)
	categories, err := h.service.List(c.UserContext(), skip, limit)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	category, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	category, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	var req UpdateCategoryRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	category, err := h.service.Update(c.UserContext(), id, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(DeleteResponse{Message: "Category deleted successfully", DeletedCategoryID: id})
}
