package handlers

import (
	"fmt"

	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/httpx"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	roleService *services.RoleService
	authz       *services.Authorizer
}

func NewRoleHandler(roleService *services.RoleService, authz *services.Authorizer) *RoleHandler {
	return &RoleHandler{roleService: roleService, authz: authz}
}

// List handles GET /role and GET /role/search?q=
func (h *RoleHandler) List(c *fiber.Ctx) error {
	q := httpx.Page(c)
	roles, total, err := h.roleService.ListRoles(c.UserContext(), q, c.Query("q"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.RoleListResponse{Roles: roles, Pagination: httpx.Paginated(q, total)})
}

func (h *RoleHandler) Get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	role, err := h.roleService.GetRole(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(role)
}

func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	role, err := h.roleService.CreateRole(c.UserContext(), &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

func (h *RoleHandler) Update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	var req dto.UpdateRoleRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	role, err := h.roleService.UpdateRole(c.UserContext(), id, &req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(role)
}

// Delete handles DELETE /role/:id. ?force=true also removes the role from
// every user holding it.
func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	removed, err := h.roleService.DeleteRole(c.UserContext(), id, c.QueryBool("force", false))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{
		"message":             "Role deleted successfully",
		"removed_memberships": removed,
	})
}

func (h *RoleHandler) Assign(c *fiber.Ctx) error {
	var req dto.RoleUserRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	role, err := h.roleService.AssignRoleToUser(c.UserContext(), req.UserID, req.RoleID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Role '%s' assigned to user %d", role.Name, req.UserID)})
}

func (h *RoleHandler) Unassign(c *fiber.Ctx) error {
	var req dto.RoleUserRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	role, err := h.roleService.UnassignRoleFromUser(c.UserContext(), req.UserID, req.RoleID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Role '%s' removed from user %d", role.Name, req.UserID)})
}

func (h *RoleHandler) BulkAssign(c *fiber.Ctx) error {
	var req dto.BulkRoleRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	result, err := h.roleService.BulkAssignRole(c.UserContext(), req.UserIDs, req.RoleID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(result)
}

func (h *RoleHandler) BulkUnassign(c *fiber.Ctx) error {
	var req dto.BulkRoleRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	result, err := h.roleService.BulkUnassignRole(c.UserContext(), req.UserIDs, req.RoleID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(result)
}

func (h *RoleHandler) RoleUsers(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	role, users, err := h.roleService.RoleUsers(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.RoleUsersResponse{
		RoleID:   role.ID,
		RoleName: role.Name,
		Users:    dto.NewUserResponses(users),
		Total:    len(users),
	})
}

func (h *RoleHandler) UserRoles(c *fiber.Ctx) error {
	userID, err := httpx.ParamID(c, "user_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	roles, err := h.roleService.UserRoles(c.UserContext(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.UserRolesResponse{UserID: userID, Roles: roles, Total: len(roles)})
}

// Check handles GET /role/check/:user_id/:role_name
func (h *RoleHandler) Check(c *fiber.Ctx) error {
	userID, err := httpx.ParamID(c, "user_id")
	if err != nil {
		return httpx.Error(c, err)
	}
	roleName, err := httpx.ParamString(c, "role_name")
	if err != nil {
		return httpx.Error(c, err)
	}
	ok, err := h.authz.UserHasRole(c.UserContext(), userID, roleName)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(dto.RoleCheckResponse{UserID: userID, RoleName: roleName, HasRole: ok})
}
