package notification

import (
	"github.com/dcsystem/dcs-backend/internal/middleware"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/modules"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationModule struct{}

func New() *NotificationModule {
	return &NotificationModule{}
}

func (m *NotificationModule) ID() string { return "notifications" }

func (m *NotificationModule) Models() []interface{} {
	return []interface{}{&models.Notification{}}
}

func (m *NotificationModule) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	handler := NewNotificationHandler(NewNotificationService(deps.DB, deps.Notifier))
	canSend := middleware.RequirePermission(deps.Authz, services.PermNotificationsSend)

	router.Post("/", canSend, handler.Create)
	router.Post("/send", canSend, handler.Send)
	router.Post("/send/bulk", canSend, handler.SendBulk)
	router.Get("/users/:user_id", canSend, handler.ForUser)

	// The caller's own notifications.
	router.Get("/my", handler.Mine)
	router.Get("/my/stats", handler.Stats)
	router.Put("/my/mark-all-read", handler.MarkAllRead)
	router.Delete("/my/read", handler.DeleteRead)
	router.Put("/bulk/mark-read", handler.BulkMarkRead)
	router.Delete("/bulk", handler.BulkDelete)

	router.Get("/:id", handler.Get)
	router.Put("/:id/read", handler.MarkRead)
	router.Delete("/:id", handler.Delete)
}
