package document

import (
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/dcsystem/dcs-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type DocumentHandler struct {
	service *DocumentService
}

func NewDocumentHandler(service *DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func (h *DocumentHandler) List(c *fiber.Ctx) error {
	categoryID, err := httpx.QueryUint(c, "category_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	isActive, err := httpx.QueryBool(c, "is_active")
	if err != nil {
		return httpx.Error(c, err)
	}

	skip, limit := httpx.Window(c)
	documents, err := h.service.List(c.UserContext(), Filter{CategoryID: categoryID, IsActive: isActive}, skip, limit)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(documents)
}

func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	doc, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(doc)
}

func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req CreateDocumentRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	doc, err := h.service.Create(c.UserContext(), userID, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}

	var req UpdateDocumentRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	doc, err := h.service.Update(c.UserContext(), userID, id, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(doc)
}

func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(DeleteResponse{Message: "Document deleted successfully", DeletedDocumentID: id})
}

func (h *DocumentHandler) Revisions(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	revisions, err := h.service.Revisions(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(RevisionsResponse{DocumentID: id, Revisions: revisions, Total: len(revisions)})
}
