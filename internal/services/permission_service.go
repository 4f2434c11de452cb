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
	"gorm.io/gorm/clause"
)

type PermissionService struct {
	db    *gorm.DB
	roles *RoleService
}

func NewPermissionService(db *gorm.DB, roles *RoleService) *PermissionService {
	return &PermissionService{db: db, roles: roles}
}

func validateSlug(slug string) error {
	if len(slug) < 2 || len(slug) > 191 || !validation.SlugPattern.MatchString(slug) {
		return apperr.InvalidArgument("Permission slug must be 2-191 characters of lowercase letters, digits, dots, hyphens or underscores")
	}
	return nil
}

func (s *PermissionService) CreatePermission(ctx context.Context, req *dto.CreatePermissionRequest) (*models.Permission, error) {
	slug := strings.TrimSpace(req.Slug)
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	db := database.GetTx(ctx, s.db)
	if err := s.ensureUnique(db, slug, 0); err != nil {
		return nil, err
	}

	perm := &models.Permission{Slug: slug, Description: req.Description}
	if err := db.Create(perm).Error; err != nil {
		return nil, translateDuplicate(err, "Permission slug already exists")
	}
	return perm, nil
}

func (s *PermissionService) UpdatePermission(ctx context.Context, id uint, req *dto.UpdatePermissionRequest) (*models.Permission, error) {
	perm, err := s.GetPermission(ctx, id)
	if err != nil {
		return nil, err
	}

	db := database.GetTx(ctx, s.db)
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if err := validateSlug(slug); err != nil {
			return nil, err
		}
		if err := s.ensureUnique(db, slug, id); err != nil {
			return nil, err
		}
		perm.Slug = slug
	}
	if req.Description != nil {
		perm.Description = req.Description
	}
	if err := db.Save(perm).Error; err != nil {
		return nil, translateDuplicate(err, "Permission slug already exists")
	}
	return perm, nil
}

func (s *PermissionService) ensureUnique(db *gorm.DB, slug string, exceptID uint) error {
	var n int64
	q := db.Model(&models.Permission{}).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("Permission slug already exists")
	}
	return nil
}

func (s *PermissionService) GetPermission(ctx context.Context, id uint) (*models.Permission, error) {
	var perm models.Permission
	if err := database.GetTx(ctx, s.db).First(&perm, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Permission not found")
		}
		return nil, err
	}
	return &perm, nil
}

func (s *PermissionService) ListPermissions(ctx context.Context, q dto.PageQuery, search string) ([]models.Permission, int64, error) {
	db := database.GetTx(ctx, s.db).Model(&models.Permission{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		db = db.Where("LOWER(slug) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	perms := []models.Permission{}
	if err := db.Scopes(database.Paginate(q.Page, q.PerPage)).Order("slug").Find(&perms).Error; err != nil {
		return nil, 0, err
	}
	return perms, total, nil
}

// DeletePermission removes the permission and every role grant of it.
func (s *PermissionService) DeletePermission(ctx context.Context, id uint) error {
	if _, err := s.GetPermission(ctx, id); err != nil {
		return err
	}
	return database.GetTx(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Permission{}, id).Error
	})
}

func (s *PermissionService) BulkDeletePermissions(ctx context.Context, ids []uint) dto.BulkResult {
	result := RunBulk(ctx, s.db, ids,
		func(id uint) string { return fmt.Sprintf("Permission ID %d", id) },
		func(ctx context.Context, id uint) error { return s.DeletePermission(ctx, id) })
	result.Message = fmt.Sprintf("Deleted %d out of %d permissions", result.SuccessCount, result.TotalRequested)
	return result
}

// AssignPermissionsToRole grants every slug to the role. All slugs must
// exist; granting an already granted permission is a no-op.
func (s *PermissionService) AssignPermissionsToRole(ctx context.Context, roleID uint, slugs []string) (*dto.RolePermissionsResponse, error) {
	if _, err := s.roles.GetRole(ctx, roleID); err != nil {
		return nil, err
	}

	wanted := uniqueSlugs(slugs)
	perms, err := s.findBySlugs(ctx, wanted)
	if err != nil {
		return nil, err
	}
	if missing := missingSlugs(wanted, perms); len(missing) > 0 {
		return nil, apperr.NotFound("Permissions not found: %s", strings.Join(missing, ", "))
	}

	granted, err := s.newGrants(ctx, roleID, perms)
	if err != nil {
		return nil, err
	}
	if len(granted) > 0 {
		rows := make([]models.RolePermission, len(granted))
		for i, p := range granted {
			rows[i] = models.RolePermission{RoleID: roleID, PermissionID: p.ID}
		}
		err := database.GetTx(ctx, s.db).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to assign permissions: %w", err)
		}
		if err := s.notifyHolders(ctx, roleID, granted); err != nil {
			return nil, err
		}
	}
	return s.RolePermissions(ctx, roleID)
}

// newGrants filters perms down to those the role does not hold yet.
func (s *PermissionService) newGrants(ctx context.Context, roleID uint, perms []models.Permission) ([]models.Permission, error) {
	var held []uint
	err := database.GetTx(ctx, s.db).Model(&models.RolePermission{}).
		Where("role_id = ?", roleID).
		Pluck("permission_id", &held).Error
	if err != nil {
		return nil, err
	}
	heldSet := make(map[uint]struct{}, len(held))
	for _, id := range held {
		heldSet[id] = struct{}{}
	}

	fresh := make([]models.Permission, 0, len(perms))
	for _, p := range perms {
		if _, ok := heldSet[p.ID]; !ok {
			fresh = append(fresh, p)
		}
	}
	return fresh, nil
}

// notifyHolders tells every current member of the role about each newly
// granted permission.
func (s *PermissionService) notifyHolders(ctx context.Context, roleID uint, granted []models.Permission) error {
	var userIDs []uint
	err := database.GetTx(ctx, s.db).Model(&models.UserRole{}).
		Where("role_id = ?", roleID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return err
	}
	for _, userID := range userIDs {
		for _, p := range granted {
			if err := s.roles.notifier.NotifyPermissionGranted(ctx, userID, p.Slug); err != nil {
				return err
			}
		}
	}
	return nil
}

// UnassignPermissionsFromRole revokes each slug from the role. Slugs that
// do not name a permission are ignored.
func (s *PermissionService) UnassignPermissionsFromRole(ctx context.Context, roleID uint, slugs []string) (*dto.RolePermissionsResponse, error) {
	if _, err := s.roles.GetRole(ctx, roleID); err != nil {
		return nil, err
	}

	perms, err := s.findBySlugs(ctx, uniqueSlugs(slugs))
	if err != nil {
		return nil, err
	}
	if len(perms) > 0 {
		ids := make([]uint, len(perms))
		for i, p := range perms {
			ids[i] = p.ID
		}
		err := database.GetTx(ctx, s.db).
			Where("role_id = ? AND permission_id IN ?", roleID, ids).
			Delete(&models.RolePermission{}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to unassign permissions: %w", err)
		}
	}
	return s.RolePermissions(ctx, roleID)
}

// RolePermissions returns the role with its granted permissions.
func (s *PermissionService) RolePermissions(ctx context.Context, roleID uint) (*dto.RolePermissionsResponse, error) {
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	perms := []models.Permission{}
	err = database.GetTx(ctx, s.db).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.slug").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}

	return &dto.RolePermissionsResponse{
		RoleID:           role.ID,
		RoleName:         role.Name,
		RoleSlug:         role.Slug,
		Permissions:      perms,
		TotalPermissions: len(perms),
	}, nil
}

func (s *PermissionService) findBySlugs(ctx context.Context, slugs []string) ([]models.Permission, error) {
	perms := []models.Permission{}
	if len(slugs) == 0 {
		return perms, nil
	}
	err := database.GetTx(ctx, s.db).Where("slug IN ?", slugs).Find(&perms).Error
	return perms, err
}

func uniqueSlugs(slugs []string) []string {
	seen := make(map[string]struct{}, len(slugs))
	out := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

func missingSlugs(wanted []string, found []models.Permission) []string {
	have := make(map[string]struct{}, len(found))
	for _, p := range found {
		have[p.Slug] = struct{}{}
	}
	var missing []string
	for _, slug := range wanted {
		if _, ok := have[slug]; !ok {
			missing = append(missing, slug)
		}
	}
	return missing
}
