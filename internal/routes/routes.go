package routes

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dcsystem/dcs-backend/internal/config"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/handlers"
	"github.com/dcsystem/dcs-backend/internal/middleware"
	"github.com/dcsystem/dcs-backend/internal/modules"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Deps is the infrastructure the route table is built from.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Tokens  *services.TokenIssuer
	Storage fiber.Storage // limiter state; nil keeps it in memory
	Modules []modules.Module
}

func Setup(app *fiber.App, d Deps) {
	cfg, db := d.Config, d.DB

	authz := services.NewAuthorizer(db)
	notifier := services.NewNotifier(db)
	roleService := services.NewRoleService(db, authz, notifier)
	permissionService := services.NewPermissionService(db, roleService)
	userService := services.NewUserService(db, authz, cfg.AdminRoleName)
	authService := services.NewAuthService(db, d.Tokens, authz, cfg.JWTRefreshExpiry)

	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(db)
	userHandler := handlers.NewUserHandler(userService)
	roleHandler := handlers.NewRoleHandler(roleService, authz)
	permissionHandler := handlers.NewPermissionHandler(permissionService, userService, authz)

	api := app.Group("/api/v1")

	// General API rate limit per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitPerMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           d.Storage,
	}))

	// One transaction per mutating request; everything below reads through it.
	api.Use(middleware.Transactional(database.NewTransactionManager(db)))

	api.Get("/health", healthHandler.Check)

	authenticated := middleware.Authenticated(d.Tokens, db)
	protect := func(h ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, authenticated...), h...)
	}
	can := func(slug string) fiber.Handler { return middleware.RequirePermission(authz, slug) }
	admin := middleware.RequireRole(authz, cfg.AdminRoleName)

	// Auth: stricter limit, login and refresh are public
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return "auth:" + c.IP() },
		Storage:           d.Storage,
	}))
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", protect(authHandler.Logout)...)
	auth.Get("/me", protect(authHandler.Me)...)

	users := api.Group("/users", authenticated...)
	users.Get("/", userHandler.List)
	users.Get("/search", userHandler.List)
	users.Get("/stats", userHandler.Stats)
	users.Get("/profile", userHandler.Profile)
	users.Put("/profile", userHandler.UpdateProfile)
	users.Put("/change-password", userHandler.ChangePassword)
	users.Post("/", can(services.PermUsersCreate), userHandler.Create)
	users.Delete("/bulk", admin, userHandler.BulkDelete)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", admin, userHandler.Delete)

	role := api.Group("/role", authenticated...)
	role.Get("/", roleHandler.List)
	role.Get("/search", roleHandler.List)
	role.Get("/check/:user_id/:role_name", roleHandler.Check)
	role.Get("/user/:user_id/roles", roleHandler.UserRoles)
	role.Post("/", can(services.PermRolesManage), roleHandler.Create)
	role.Post("/assign", can(services.PermRolesManage), roleHandler.Assign)
	role.Post("/unassign", can(services.PermRolesManage), roleHandler.Unassign)
	role.Post("/bulk/assign", can(services.PermRolesManage), roleHandler.BulkAssign)
	role.Post("/bulk/unassign", can(services.PermRolesManage), roleHandler.BulkUnassign)
	role.Get("/:id", roleHandler.Get)
	role.Get("/:id/users", roleHandler.RoleUsers)
	role.Put("/:id", can(services.PermRolesManage), roleHandler.Update)
	role.Delete("/:id", can(services.PermRolesManage), roleHandler.Delete)

	permissions := api.Group("/permissions", authenticated...)
	permissions.Get("/", permissionHandler.List)
	permissions.Get("/search", permissionHandler.List)
	permissions.Post("/", admin, permissionHandler.Create)
	permissions.Delete("/bulk", admin, permissionHandler.BulkDelete)
	permissions.Get("/roles/:id/permissions", permissionHandler.RolePermissions)
	permissions.Post("/roles/:id/assign", can(services.PermPermissionsManage), permissionHandler.AssignToRole)
	permissions.Post("/roles/:id/unassign", can(services.PermPermissionsManage), permissionHandler.UnassignFromRole)
	permissions.Get("/users/:id/check/:slug", permissionHandler.CheckUser)
	permissions.Get("/users/:id/permissions", permissionHandler.UserPermissions)
	permissions.Get("/:id", permissionHandler.Get)
	permissions.Put("/:id", admin, permissionHandler.Update)
	permissions.Delete("/:id", admin, permissionHandler.Delete)

	// Resource modules
	deps := &modules.Deps{DB: db, Config: cfg, Authz: authz, Notifier: notifier}
	for _, m := range d.Modules {
		m.RegisterRoutes(api.Group("/"+m.ID(), authenticated...), deps)
	}
}

// ErrorHandler answers errors no handler turned into a response. Details
// are only exposed for client errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}
