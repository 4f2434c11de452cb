// Package testutil provides sqlite-backed fixtures for package tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AllModels lists every table the service migrates.
func AllModels() []interface{} {
	return append(models.Core(),
		&models.Category{},
		&models.Document{},
		&models.DocumentRevision{},
		&models.DocumentHistory{},
	)
}

// NewDB returns a migrated in-memory database limited to one connection.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Name: name, Email: strings.ToLower(email), Password: string(hash)}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateRole(t *testing.T, db *gorm.DB, name string) *models.Role {
	t.Helper()

	role := &models.Role{Name: name, Slug: strings.ReplaceAll(strings.ToLower(name), " ", "-")}
	require.NoError(t, db.Create(role).Error)
	return role
}

func CreatePermission(t *testing.T, db *gorm.DB, slug string) *models.Permission {
	t.Helper()

	perm := &models.Permission{Slug: slug}
	require.NoError(t, db.Create(perm).Error)
	return perm
}

// Grant binds permission slugs to role, creating missing permissions.
func Grant(t *testing.T, db *gorm.DB, role *models.Role, slugs ...string) {
	t.Helper()

	for _, slug := range slugs {
		var perm models.Permission
		err := db.Where("slug = ?", slug).First(&perm).Error
		if err != nil {
			perm = *CreatePermission(t, db, slug)
		}
		require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
	}
}

// AssignRole binds role to user.
func AssignRole(t *testing.T, db *gorm.DB, user *models.User, role *models.Role) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error)
}
