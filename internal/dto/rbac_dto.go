package dto

import "github.com/dcsystem/dcs-backend/internal/models"

type CreateRoleRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,max=100"`
	Description *string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

type RoleListResponse struct {
	Roles      []models.Role `json:"roles"`
	Pagination Pagination    `json:"pagination"`
}

type RoleUserRequest struct {
	UserID uint `json:"user_id" validate:"required"`
	RoleID uint `json:"role_id" validate:"required"`
}

type BulkRoleRequest struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1"`
	RoleID  uint   `json:"role_id" validate:"required"`
}

type RoleCheckResponse struct {
	UserID   uint   `json:"user_id"`
	RoleName string `json:"role_name"`
	HasRole  bool   `json:"has_role"`
}

type UserRolesResponse struct {
	UserID uint          `json:"user_id"`
	Roles  []models.Role `json:"roles"`
	Total  int           `json:"total"`
}

type RoleUsersResponse struct {
	RoleID   uint           `json:"role_id"`
	RoleName string         `json:"role_name"`
	Users    []UserResponse `json:"users"`
	Total    int            `json:"total"`
}

type CreatePermissionRequest struct {
	Slug        string  `json:"slug" validate:"required,min=2,max=191,slug"`
	Description *string `json:"description" validate:"omitempty,max=191"`
}

type UpdatePermissionRequest struct {
	Slug        *string `json:"slug" validate:"omitempty,min=2,max=191,slug"`
	Description *string `json:"description" validate:"omitempty,max=191"`
}

type PermissionListResponse struct {
	Permissions []models.Permission `json:"permissions"`
	Pagination  Pagination          `json:"pagination"`
}

type PermissionSlugsRequest struct {
	PermissionSlugs []string `json:"permission_slugs" validate:"required,min=1,dive,required"`
}

type RolePermissionsResponse struct {
	RoleID           uint                `json:"role_id"`
	RoleName         string              `json:"role_name"`
	RoleSlug         string              `json:"role_slug"`
	Permissions      []models.Permission `json:"permissions"`
	TotalPermissions int                 `json:"total_permissions"`
}

type PermissionCheckResponse struct {
	UserID          uint     `json:"user_id"`
	PermissionSlug  string   `json:"permission_slug"`
	HasPermission   bool     `json:"has_permission"`
	GrantedViaRoles []string `json:"granted_via_roles"`
}

type UserPermissionsResponse struct {
	UserID      uint     `json:"user_id"`
	Permissions []string `json:"permissions"`
	Total       int      `json:"total"`
}
