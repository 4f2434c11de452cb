package revision

import (
	"github.com/dcsystem/dcs-backend/internal/middleware"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/modules"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type RevisionModule struct{}

func New() *RevisionModule {
	return &RevisionModule{}
}

func (m *RevisionModule) ID() string { return "document-revisions" }

func (m *RevisionModule) Models() []interface{} {
	return []interface{}{&models.DocumentRevision{}}
}

func (m *RevisionModule) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	handler := NewRevisionHandler(NewRevisionService(deps.DB, deps.Notifier))

	router.Get("/", handler.List)
	router.Post("/", middleware.RequirePermission(deps.Authz, services.PermRevisionsCreate), handler.Create)
	router.Get("/document/:document_id", handler.ByDocument)
	router.Get("/document/:document_id/latest", handler.Latest)
	router.Get("/:id", handler.Get)
	router.Put("/:id", middleware.RequirePermission(deps.Authz, services.PermRevisionsUpdate), handler.Update)
	router.Patch("/:id/status", middleware.RequirePermission(deps.Authz, services.PermRevisionsApprove), handler.ChangeStatus)
	router.Delete("/:id", middleware.RequirePermission(deps.Authz, services.PermRevisionsDelete), handler.Delete)
}
