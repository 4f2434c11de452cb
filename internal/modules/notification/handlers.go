package notification

import (
	"fmt"

	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/dcsystem/dcs-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateNotificationRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	n, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewNotificationResponse(n))
}

func (h *NotificationHandler) Send(c *fiber.Ctx) error {
	var req dto.SendNotificationRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	n, err := h.service.Send(c.UserContext(), &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewNotificationResponse(n))
}

func (h *NotificationHandler) SendBulk(c *fiber.Ctx) error {
	var req dto.BulkSendNotificationRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(h.service.SendBulk(c.UserContext(), &req))
}

func (h *NotificationHandler) Mine(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	f, err := filter(c)
	if err != nil {
		return httpx.Error(c, err)
	}
	resp, err := h.service.List(c.UserContext(), userID, f, httpx.Page(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(resp)
}

func (h *NotificationHandler) ForUser(c *fiber.Ctx) error {
	userID, err := httpx.ParamID(c, "user_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	f, err := filter(c)
	if err != nil {
		return httpx.Error(c, err)
	}
	resp, err := h.service.ListForUser(c.UserContext(), userID, f, httpx.Page(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(resp)
}

func (h *NotificationHandler) Stats(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	stats, err := h.service.Stats(c.UserContext(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(stats)
}

func (h *NotificationHandler) Get(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	resp, err := h.service.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(resp)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	read := true
	if len(c.Body()) > 0 {
		var req MarkReadRequest
		if err := httpx.Bind(c, &req); err != nil {
			return httpx.Error(c, err)
		}
		if req.MarkAsRead != nil {
			read = *req.MarkAsRead
		}
	}

	n, err := h.service.MarkRead(c.UserContext(), userID, c.Params("id"), read)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.NewNotificationResponse(n))
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	count, err := h.service.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(CountResponse{Message: fmt.Sprintf("Marked %d notifications as read", count), Count: count})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	if err := h.service.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Notification deleted successfully"})
}

func (h *NotificationHandler) DeleteRead(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	count, err := h.service.DeleteRead(c.UserContext(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(CountResponse{Message: fmt.Sprintf("Deleted %d read notifications", count), Count: count})
}

func (h *NotificationHandler) BulkMarkRead(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.NotificationIDsRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(h.service.BulkMarkRead(c.UserContext(), userID, req.NotificationIDs))
}

func (h *NotificationHandler) BulkDelete(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.NotificationIDsRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(h.service.BulkDelete(c.UserContext(), userID, req.NotificationIDs))
}

func filter(c *fiber.Ctx) (dto.NotificationFilter, error) {
	isRead, err := httpx.QueryBool(c, "is_read")
	if err != nil {
		return dto.NotificationFilter{}, err
	}
	return dto.NotificationFilter{IsRead: isRead, Type: c.Query("type")}, nil
}
