package handlers

import (
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PermissionHandler struct {
	permissionService *services.PermissionService
	userService       *services.UserService
	authz             *services.Authorizer
}

func NewPermissionHandler(permissionService *services.PermissionService, userService *services.UserService, authz *services.Authorizer) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService, userService: userService, authz: authz}
}

// List handles GET /permissions and GET /permissions/search?q=
func (h *PermissionHandler) List(c *fiber.Ctx) error {
	q := httpx.Page(c)
	perms, total, err := h.permissionService.ListPermissions(c.UserContext(), q, c.Query("q"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.PermissionListResponse{Permissions: perms, Pagination: httpx.Paginated(q, total)})
}

func (h *PermissionHandler) Get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	perm, err := h.permissionService.GetPermission(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(perm)
}

func (h *PermissionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePermissionRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	perm, err := h.permissionService.CreatePermission(c.UserContext(), &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(perm)
}

func (h *PermissionHandler) Update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	var req dto.UpdatePermissionRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	perm, err := h.permissionService.UpdatePermission(c.UserContext(), id, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(perm)
}

func (h *PermissionHandler) Delete(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.permissionService.DeletePermission(c.UserContext(), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Permission deleted successfully"})
}

func (h *PermissionHandler) BulkDelete(c *fiber.Ctx) error {
	var req dto.IDsRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(h.permissionService.BulkDeletePermissions(c.UserContext(), req.IDs))
}

func (h *PermissionHandler) AssignToRole(c *fiber.Ctx) error {
	roleID, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	var req dto.PermissionSlugsRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	resp, err := h.permissionService.AssignPermissionsToRole(c.UserContext(), roleID, req.PermissionSlugs)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(resp)
}

func (h *PermissionHandler) UnassignFromRole(c *fiber.Ctx) error {
	roleID, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	var req dto.PermissionSlugsRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	resp, err := h.permissionService.UnassignPermissionsFromRole(c.UserContext(), roleID, req.PermissionSlugs)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(resp)
}

func (h *PermissionHandler) RolePermissions(c *fiber.Ctx) error {
	roleID, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	resp, err := h.permissionService.RolePermissions(c.UserContext(), roleID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(resp)
}

// CheckUser handles GET /permissions/users/:id/check/:slug
func (h *PermissionHandler) CheckUser(c *fiber.Ctx) error {
	userID, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	if _, err := h.userService.GetUser(c.UserContext(), userID); err != nil {
		return httpx.Error(c, err)
	}

	slug, err := httpx.ParamString(c, "slug")
	if err != nil {
		return httpx.Error(c, err)
	}
	ok, err := h.authz.UserHasPermission(c.UserContext(), userID, slug)
	if err != nil {
		return httpx.Error(c, err)
	}
	via, err := h.authz.GrantedVia(c.UserContext(), userID, slug)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.PermissionCheckResponse{
		UserID:          userID,
		PermissionSlug:  slug,
		HasPermission:   ok,
		GrantedViaRoles: via,
	})
}

func (h *PermissionHandler) UserPermissions(c *fiber.Ctx) error {
	userID, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	if _, err := h.userService.GetUser(c.UserContext(), userID); err != nil {
		return httpx.Error(c, err)
	}

	perms, err := h.authz.EffectivePermissions(c.UserContext(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.UserPermissionsResponse{UserID: userID, Permissions: perms, Total: len(perms)})
}
