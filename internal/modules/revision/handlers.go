package revision

import (
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/dcsystem/dcs-backend/internal/session"
	"github.com/dcsystem/dcs-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type RevisionHandler struct {
	service *RevisionService
}

func NewRevisionHandler(service *RevisionService) *RevisionHandler {
	return &RevisionHandler{service: service}
}

func (h *RevisionHandler) List(c *fiber.Ctx) error {
	documentID, err := httpx.QueryUint(c, "document_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	skip, limit := httpx.Window(c)
	revisions, err := h.service.List(c.UserContext(), Filter{DocumentID: documentID, Status: c.Query("status")}, skip, limit)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(revisions)
}

func (h *RevisionHandler) Get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	rev, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(rev)
}

func (h *RevisionHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req CreateRevisionRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	rev, err := h.service.Create(c.UserContext(), userID, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rev)
}

func (h *RevisionHandler) Update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	var req UpdateRevisionRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	rev, err := h.service.Update(c.UserContext(), id, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(rev)
}

func (h *RevisionHandler) Delete(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(DeleteResponse{Message: "Document revision deleted successfully", DeletedRevisionID: id})
}

func (h *RevisionHandler) ByDocument(c *fiber.Ctx) error {
	documentID, err := httpx.ParamID(c, "document_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	skip, limit := httpx.Window(c)
	revisions, err := h.service.ByDocument(c.UserContext(), documentID, c.Query("status"), skip, limit)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(revisions)
}

func (h *RevisionHandler) Latest(c *fiber.Ctx) error {
	documentID, err := httpx.ParamID(c, "document_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	rev, err := h.service.Latest(c.UserContext(), documentID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(rev)
}

// ChangeStatus handles PATCH /:id/status. The new status comes from the
// body, or from ?new_status= when the body is empty.
func (h *RevisionHandler) ChangeStatus(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}

	var req StatusRequest
	if len(c.Body()) == 0 {
		req.Status = c.Query("new_status")
		if err := validation.Struct(&req); err != nil {
			return httpx.Error(c, err)
		}
	} else if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}

	rev, err := h.service.ChangeStatus(c.UserContext(), userID, id, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(rev)
}
