package history

import (
	"time"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/dcsystem/dcs-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

type HistoryHandler struct {
	service *HistoryService
}

func NewHistoryHandler(service *HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

func (h *HistoryHandler) List(c *fiber.Ctx) error {
	documentID, err := httpx.QueryUint(c, "document_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	performedBy, err := httpx.QueryUint(c, "performed_by")
	if err != nil {
		return httpx.Error(c, err)
	}

	skip, limit := httpx.Window(c)
	entries, err := h.service.List(c.UserContext(), Filter{
		DocumentID:  documentID,
		Action:      c.Query("action"),
		PerformedBy: performedBy,
	}, skip, limit)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(entries)
}

func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	entry, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(entry)
}

// Create handles both POST / and POST /log.
func (h *HistoryHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req CreateHistoryRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	entry, err := h.service.Create(c.UserContext(), userID, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *HistoryHandler) Update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	var req UpdateHistoryRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	entry, err := h.service.Update(c.UserContext(), id, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(entry)
}

func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(DeleteResponse{Message: "Document history deleted successfully", DeletedHistoryID: id})
}

func (h *HistoryHandler) ByDocument(c *fiber.Ctx) error {
	documentID, err := httpx.ParamID(c, "document_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	skip, limit := httpx.Window(c)
	entries, err := h.service.ByDocument(c.UserContext(), documentID, c.Query("action"), skip, limit)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(entries)
}

// Summary handles GET /analytics/summary. A date-only end_date covers the
// whole day.
func (h *HistoryHandler) Summary(c *fiber.Ctx) error {
	documentID, err := httpx.QueryUint(c, "document_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	start, _, err := parseDate(c.Query("start_date"), "start_date")
	if err != nil {
		return httpx.Error(c, err)
	}
	end, dateOnly, err := parseDate(c.Query("end_date"), "end_date")
	if err != nil {
		return httpx.Error(c, err)
	}
	if end != nil && dateOnly {
		next := end.AddDate(0, 0, 1)
		end = &next
	}

	summary, err := h.service.Summarize(c.UserContext(), documentID, start, end)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(summary)
}

func parseDate(raw, name string) (*time.Time, bool, error) {
	if raw == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, false, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, true, nil
	}
	return nil, false, apperr.InvalidArgument("Invalid %s", name).
		WithDetails("expected RFC3339 or YYYY-MM-DD")
}
