package history

import (
	"github.com/dcsystem/dcs-backend/internal/middleware"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/modules"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type HistoryModule struct{}

func New() *HistoryModule {
	return &HistoryModule{}
}

func (m *HistoryModule) ID() string { return "document-history" }

func (m *HistoryModule) Models() []interface{} {
	return []interface{}{&models.DocumentHistory{}}
}

func (m *HistoryModule) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	handler := NewHistoryHandler(NewHistoryService(deps.DB))
	canCreate := middleware.RequirePermission(deps.Authz, services.PermHistoryCreate)

	router.Get("/", handler.List)
	router.Post("/", canCreate, handler.Create)
	router.Post("/log", canCreate, handler.Create)
	router.Get("/analytics/summary", handler.Summary)
	router.Get("/document/:document_id", handler.ByDocument)
	router.Get("/:id", handler.Get)
	router.Put("/:id", middleware.RequirePermission(deps.Authz, services.PermHistoryUpdate), handler.Update)
	router.Delete("/:id", middleware.RequirePermission(deps.Authz, services.PermHistoryDelete), handler.Delete)
}
