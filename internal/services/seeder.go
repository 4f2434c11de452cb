package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SeedConfig struct {
	AdminRoleName string
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Seeder installs the built-in permissions and the admin role. Running it
// again only fills in what is missing.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

func (s *Seeder) Seed(ctx context.Context, cfg SeedConfig) error {
	return database.GetTx(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		permIDs := make([]uint, 0, len(DefaultPermissions))
		for _, p := range DefaultPermissions {
			desc := p.Description
			perm := models.Permission{Slug: p.Slug}
			if err := tx.Where(models.Permission{Slug: p.Slug}).
				Attrs(models.Permission{Description: &desc}).
				FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", p.Slug, err)
			}
			permIDs = append(permIDs, perm.ID)
		}

		role := models.Role{Name: cfg.AdminRoleName}
		if err := tx.Where(models.Role{Name: cfg.AdminRoleName}).
			Attrs(models.Role{Slug: Slugify(cfg.AdminRoleName)}).
			FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed admin role: %w", err)
		}

		grants := make([]models.RolePermission, len(permIDs))
		for i, id := range permIDs {
			grants[i] = models.RolePermission{RoleID: role.ID, PermissionID: id}
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error; err != nil {
			return fmt.Errorf("seed admin grants: %w", err)
		}

		if cfg.AdminEmail == "" {
			slog.Info("seed completed without admin user", "permissions", len(permIDs))
			return nil
		}
		if cfg.AdminPassword == "" {
			return fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
		}

		email := NormalizeEmail(cfg.AdminEmail)
		var user models.User
		err := tx.Where("LOWER(email) = ?", email).First(&user).Error
		if isNotFound(err) {
			hash, hashErr := hashPassword(cfg.AdminPassword)
			if hashErr != nil {
				return hashErr
			}
			user = models.User{Name: cfg.AdminName, Email: email, Password: hash}
			err = tx.Create(&user).Error
		}
		if err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error; err != nil {
			return fmt.Errorf("seed admin membership: %w", err)
		}

		slog.Info("seed completed", "permissions", len(permIDs), "admin_email", email)
		return nil
	})
}
