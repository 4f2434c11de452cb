package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db            *gorm.DB
	authz         *Authorizer
	adminRoleName string
}

func NewUserService(db *gorm.DB, authz *Authorizer, adminRoleName string) *UserService {
	return &UserService{db: db, authz: authz, adminRoleName: adminRoleName}
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *UserService) ensureEmailFree(db *gorm.DB, email string, exceptID uint) error {
	var n int64
	q := db.Model(&models.User{}).Where("LOWER(email) = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("Email already registered")
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	db := database.GetTx(ctx, s.db)
	email := NormalizeEmail(req.Email)
	if err := s.ensureEmailFree(db, email, 0); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: strings.TrimSpace(req.Name), Email: email, Password: hash}
	if err := db.Create(user).Error; err != nil {
		return nil, translateDuplicate(err, "Email already registered")
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := database.GetTx(ctx, s.db).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) ListUsers(ctx context.Context, q dto.PageQuery, search string) ([]models.User, int64, error) {
	db := database.GetTx(ctx, s.db).Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	if err := db.Scopes(database.Paginate(q.Page, q.PerPage)).Order("id").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateUser applies req to user id. Callers may only update themselves
// unless they hold the admin role.
func (s *UserService) UpdateUser(ctx context.Context, actorID, id uint, req *dto.UpdateUserRequest) (*models.User, error) {
	if actorID != id {
		if err := s.authz.CheckRole(ctx, actorID, s.adminRoleName); err != nil {
			return nil, apperr.PermissionDenied("You can only update your own account")
		}
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	db := database.GetTx(ctx, s.db)
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := NormalizeEmail(*req.Email)
		if err := s.ensureEmailFree(db, email, id); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := db.Save(user).Error; err != nil {
		return nil, translateDuplicate(err, "Email already registered")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateProfileRequest) (*models.User, error) {
	return s.UpdateUser(ctx, userID, userID, &dto.UpdateUserRequest{Name: req.Name, Email: req.Email})
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, req *dto.ChangePasswordRequest) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return apperr.InvalidArgument("Current password is incorrect")
	}
	if req.NewPassword == req.CurrentPassword {
		return apperr.InvalidArgument("New password must be different from the current password")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	db := database.GetTx(ctx, s.db)
	if err := db.Model(user).Update("password", hash).Error; err != nil {
		return err
	}
	// Existing sessions must sign in again.
	return db.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Update("revoked", true).Error
}

// DeleteUser removes the user with their role memberships, refresh tokens
// and notifications. Users cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return apperr.InvalidArgument("Cannot delete your own account")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	return database.GetTx(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Scopes(database.ForNotifiable(id)).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

func (s *UserService) BulkDeleteUsers(ctx context.Context, actorID uint, ids []uint) dto.BulkResult {
	result := RunBulk(ctx, s.db, ids, userLabel, func(ctx context.Context, id uint) error {
		return s.DeleteUser(ctx, actorID, id)
	})
	result.Message = fmt.Sprintf("Deleted %d out of %d users", result.SuccessCount, result.TotalRequested)
	return result
}

func (s *UserService) Stats(ctx context.Context) (*dto.UserStats, error) {
	db := database.GetTx(ctx, s.db)
	var stats dto.UserStats

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("email_verified_at IS NOT NULL").Count(&stats.VerifiedUsers).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.User{}).Where("created_at >= ?", monthStart).Count(&stats.NewUsersThisMonth).Error; err != nil {
		return nil, err
	}
	stats.UnverifiedUsers = stats.TotalUsers - stats.VerifiedUsers
	return &stats, nil
}
