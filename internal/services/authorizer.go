package services

import (
	"context"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/models"
	"gorm.io/gorm"
)

// Authorizer answers "may this user do X" straight from the join tables.
// Every answer is a fresh query; nothing is cached between calls, so a
// role or permission change is visible to the very next check.
type Authorizer struct {
	db *gorm.DB
}

func NewAuthorizer(db *gorm.DB) *Authorizer {
	return &Authorizer{db: db}
}

func (a *Authorizer) grants(ctx context.Context, userID uint) *gorm.DB {
	return database.GetTx(ctx, a.db).
		Table("user_roles").
		Joins("JOIN role_permissions ON role_permissions.role_id = user_roles.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("user_roles.user_id = ?", userID)
}

// UserHasPermission reports whether any role held by the user carries slug.
// Unknown users and unknown permissions simply yield false.
func (a *Authorizer) UserHasPermission(ctx context.Context, userID uint, slug string) (bool, error) {
	var n int64
	if err := a.grants(ctx, userID).Where("permissions.slug = ?", slug).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// UserHasRole reports whether the user holds a role named exactly roleName.
// Candidates are matched case-insensitively in SQL and compared exactly
// here, so the result does not depend on the column collation.
func (a *Authorizer) UserHasRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	var names []string
	err := database.GetTx(ctx, a.db).
		Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND LOWER(roles.name) = LOWER(?)", userID, roleName).
		Pluck("roles.name", &names).Error
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == roleName {
			return true, nil
		}
	}
	return false, nil
}

// EffectivePermissions returns the de-duplicated union of permission slugs
// over every role the user holds, sorted by slug.
func (a *Authorizer) EffectivePermissions(ctx context.Context, userID uint) ([]string, error) {
	slugs := []string{}
	err := a.grants(ctx, userID).
		Distinct("permissions.slug").
		Order("permissions.slug").
		Pluck("permissions.slug", &slugs).Error
	return slugs, err
}

// GrantedVia returns the names of the user's roles that carry slug.
func (a *Authorizer) GrantedVia(ctx context.Context, userID uint, slug string) ([]string, error) {
	names := []string{}
	err := database.GetTx(ctx, a.db).
		Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Joins("JOIN role_permissions ON role_permissions.role_id = roles.id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("user_roles.user_id = ? AND permissions.slug = ?", userID, slug).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	return names, err
}

// UserRoles returns the roles the user holds, ordered by name.
func (a *Authorizer) UserRoles(ctx context.Context, userID uint) ([]models.Role, error) {
	roles := []models.Role{}
	err := database.GetTx(ctx, a.db).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Find(&roles).Error
	return roles, err
}

func (a *Authorizer) UserRoleNames(ctx context.Context, userID uint) ([]string, error) {
	roles, err := a.UserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names, nil
}

// CheckPermission returns PermissionDenied unless the user carries slug.
func (a *Authorizer) CheckPermission(ctx context.Context, userID uint, slug string) error {
	ok, err := a.UserHasPermission(ctx, userID, slug)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.PermissionDenied("Permission '%s' required", slug)
	}
	return nil
}

// CheckRole returns PermissionDenied unless the user holds roleName.
func (a *Authorizer) CheckRole(ctx context.Context, userID uint, roleName string) error {
	ok, err := a.UserHasRole(ctx, userID, roleName)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.PermissionDenied("Role '%s' required", roleName)
	}
	return nil
}
