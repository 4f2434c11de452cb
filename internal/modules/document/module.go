package document

import (
	"github.com/dcsystem/dcs-backend/internal/middleware"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/modules"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type DocumentModule struct{}

func New() *DocumentModule {
	return &DocumentModule{}
}

func (m *DocumentModule) ID() string { return "documents" }

func (m *DocumentModule) Models() []interface{} {
	return []interface{}{&models.Document{}}
}

func (m *DocumentModule) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	handler := NewDocumentHandler(NewDocumentService(deps.DB, deps.Notifier))

	router.Get("/", handler.List)
	router.Post("/", middleware.RequirePermission(deps.Authz, services.PermDocumentsCreate), handler.Create)
	router.Get("/:id", handler.Get)
	router.Get("/:id/revisions", handler.Revisions)
	router.Put("/:id", middleware.RequirePermission(deps.Authz, services.PermDocumentsUpdate), handler.Update)
	router.Delete("/:id", middleware.RequirePermission(deps.Authz, services.PermDocumentsDelete), handler.Delete)
}
