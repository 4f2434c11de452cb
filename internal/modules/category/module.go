package category

import (
	"github.com/dcsystem/dcs-backend/internal/middleware"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/modules"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CategoryModule struct{}

func New() *CategoryModule {
	return &CategoryModule{}
}

func (m *CategoryModule) ID() string { return "categories" }

func (m *CategoryModule) Models() []interface{} {
	return []interface{}{&models.Category{}}
}

func (m *CategoryModule) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	handler := NewCategoryHandler(NewCategoryService(deps.DB))

	router.Get("/", handler.List)
	router.Post("/", middleware.RequirePermission(deps.Authz, services.PermCategoriesCreate), handler.Create)
	router.Get("/:id", handler.Get)
	router.Put("/:id", middleware.RequirePermission(deps.Authz, services.PermCategoriesUpdate), handler.Update)
	router.Delete("/:id", middleware.RequirePermission(deps.Authz, services.PermCategoriesDelete), handler.Delete)
}
