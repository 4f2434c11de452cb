package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/validation"
	"gorm.io/gorm"
)

type RoleService struct {
	db       *gorm.DB
	authz    *Authorizer
	notifier *Notifier
}

func NewRoleService(db *gorm.DB, authz *Authorizer, notifier *Notifier) *RoleService {
	return &RoleService{db: db, authz: authz, notifier: notifier}
}

// Slugify lower-cases s, replaces spaces with hyphens and drops every
// character a slug may not contain.
func Slugify(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return -1
	}, normalizeSlug(s))
}

func normalizeSlug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// roleSlug normalises an explicit slug and rejects one that is not URL-safe.
func roleSlug(raw string) (string, error) {
	slug := normalizeSlug(raw)
	if len(slug) > 100 || !validation.SlugPattern.MatchString(slug) {
		return "", apperr.InvalidArgument("Role slug must be up to 100 characters of lowercase letters, digits, dots, hyphens or underscores")
	}
	return slug, nil
}

func (s *RoleService) CreateRole(ctx context.Context, req *dto.CreateRoleRequest) (*models.Role, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.InvalidArgument("Role name is required")
	}
	slug := Slugify(name)
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		var err error
		if slug, err = roleSlug(*req.Slug); err != nil {
			return nil, err
		}
	}
	if slug == "" {
		return nil, apperr.InvalidArgument("Role name must contain letters or digits")
	}

	db := database.GetTx(ctx, s.db)
	if err := s.ensureUnique(db, name, slug, 0); err != nil {
		return nil, err
	}

	role := &models.Role{Name: name, Slug: slug, Description: req.Description}
	if err := db.Create(role).Error; err != nil {
		return nil, translateDuplicate(err, "Role name or slug already exists")
	}
	return role, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, id uint, req *dto.UpdateRoleRequest) (*models.Role, error) {
	db := database.GetTx(ctx, s.db)
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}

	// The slug only changes when one is sent.
	name, slug := role.Name, role.Slug
	if req.Name != nil {
		if name = strings.TrimSpace(*req.Name); name == "" {
			return nil, apperr.InvalidArgument("Role name is required")
		}
	}
	if req.Slug != nil {
		if slug, err = roleSlug(*req.Slug); err != nil {
			return nil, err
		}
	}
	if err := s.ensureUnique(db, name, slug, id); err != nil {
		return nil, err
	}

	role.Name, role.Slug = name, slug
	if req.Description != nil {
		role.Description = req.Description
	}
	if err := db.Save(role).Error; err != nil {
		return nil, translateDuplicate(err, "Role name or slug already exists")
	}
	return role, nil
}

func (s *RoleService) ensureUnique(db *gorm.DB, name, slug string, exceptID uint) error {
	var existing models.Role
	q := db.Where("name = ? OR slug = ?", name, slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.First(&existing).Error
	if err == nil {
		if existing.Name == name {
			return apperr.Conflict("Role name already exists")
		}
		return apperr.Conflict("Role slug already exists")
	}
	if !isNotFound(err) {
		return err
	}
	return nil
}

func (s *RoleService) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := database.GetTx(ctx, s.db).First(&role, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Role not found")
		}
		return nil, err
	}
	return &role, nil
}

func (s *RoleService) ListRoles(ctx context.Context, q dto.PageQuery, search string) ([]models.Role, int64, error) {
	db := database.GetTx(ctx, s.db).Model(&models.Role{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	roles := []models.Role{}
	if err := db.Scopes(database.Paginate(q.Page, q.PerPage)).Order("id").Find(&roles).Error; err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// DeleteRole removes a role with all of its memberships and grants. While
// users still hold the role the delete is refused unless force is set.
func (s *RoleService) DeleteRole(ctx context.Context, id uint, force bool) (int64, error) {
	if _, err := s.GetRole(ctx, id); err != nil {
		return 0, err
	}

	var members int64
	if err := database.GetTx(ctx, s.db).Model(&models.UserRole{}).Where("role_id = ?", id).Count(&members).Error; err != nil {
		return 0, err
	}
	if members > 0 && !force {
		return 0, apperr.Conflict("Cannot delete role. %d users still have this role", members)
	}

	err := database.GetTx(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, id).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete role: %w", err)
	}
	return members, nil
}

// AssignRoleToUser binds the role to the user and notifies them.
func (s *RoleService) AssignRoleToUser(ctx context.Context, userID, roleID uint) (*models.Role, error) {
	db := database.GetTx(ctx, s.db)
	if err := ensureUser(db, userID); err != nil {
		return nil, err
	}
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	held, err := s.holds(db, userID, roleID)
	if err != nil {
		return nil, err
	}
	if held {
		return nil, apperr.Conflict("User already has this role")
	}

	if err := db.Create(&models.UserRole{UserID: userID, RoleID: roleID}).Error; err != nil {
		return nil, translateDuplicate(err, "User already has this role")
	}
	if err := s.notifier.NotifyRoleAssigned(ctx, userID, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) UnassignRoleFromUser(ctx context.Context, userID, roleID uint) (*models.Role, error) {
	db := database.GetTx(ctx, s.db)
	if err := ensureUser(db, userID); err != nil {
		return nil, err
	}
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	result := db.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&models.UserRole{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.InvalidArgument("User does not have this role")
	}
	return role, nil
}

func (s *RoleService) BulkAssignRole(ctx context.Context, userIDs []uint, roleID uint) (dto.BulkResult, error) {
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return dto.BulkResult{}, err
	}
	result := RunBulk(ctx, s.db, userIDs, userLabel, func(ctx context.Context, id uint) error {
		_, err := s.AssignRoleToUser(ctx, id, roleID)
		return err
	})
	result.Message = fmt.Sprintf("Role '%s' assigned to %d out of %d users", role.Name, result.SuccessCount, result.TotalRequested)
	return result, nil
}

func (s *RoleService) BulkUnassignRole(ctx context.Context, userIDs []uint, roleID uint) (dto.BulkResult, error) {
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return dto.BulkResult{}, err
	}
	result := RunBulk(ctx, s.db, userIDs, userLabel, func(ctx context.Context, id uint) error {
		_, err := s.UnassignRoleFromUser(ctx, id, roleID)
		return err
	})
	result.Message = fmt.Sprintf("Role '%s' removed from %d out of %d users", role.Name, result.SuccessCount, result.TotalRequested)
	return result, nil
}

// RoleUsers lists the users holding the role.
func (s *RoleService) RoleUsers(ctx context.Context, roleID uint) (*models.Role, []models.User, error) {
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, nil, err
	}
	users := []models.User{}
	err = database.GetTx(ctx, s.db).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role_id = ?", roleID).
		Order("users.id").
		Find(&users).Error
	return role, users, err
}

// UserRoles lists the roles held by an existing user.
func (s *RoleService) UserRoles(ctx context.Context, userID uint) ([]models.Role, error) {
	if err := ensureUser(database.GetTx(ctx, s.db), userID); err != nil {
		return nil, err
	}
	return s.authz.UserRoles(ctx, userID)
}

func (s *RoleService) holds(db *gorm.DB, userID, roleID uint) (bool, error) {
	var n int64
	err := db.Model(&models.UserRole{}).Where("user_id = ? AND role_id = ?", userID, roleID).Count(&n).Error
	return n > 0, err
}

func userLabel(id uint) string {
	return fmt.Sprintf("User ID %d", id)
}
