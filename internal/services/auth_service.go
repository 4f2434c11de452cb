package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db         *gorm.DB
	tokens     *TokenIssuer
	authz      *Authorizer
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, tokens *TokenIssuer, authz *Authorizer, refreshTTL time.Duration) *AuthService {
	return &AuthService{db: db, tokens: tokens, authz: authz, refreshTTL: refreshTTL}
}

// Login checks the credentials; the email comparison ignores case.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	db := database.GetTx(ctx, s.db)

	var user models.User
	if err := db.Where("LOWER(email) = ?", NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthenticated("Invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthenticated("Invalid email or password")
	}

	return s.issueTokenPair(db, &user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	db := database.GetTx(ctx, s.db)

	var stored models.RefreshToken
	err := db.Where("token_hash = ? AND revoked = ?", hashToken(req.RefreshToken), false).First(&stored).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthenticated("Invalid or expired refresh token")
		}
		return nil, err
	}

	if err := db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, err
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperr.Unauthenticated("Invalid or expired refresh token")
	}

	var user models.User
	if err := db.First(&user, stored.UserID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthenticated("Invalid or expired refresh token")
		}
		return nil, err
	}

	return s.issueTokenPair(db, &user)
}

// Logout revokes the given refresh token, or all of the user's refresh
// tokens when none is given.
func (s *AuthService) Logout(ctx context.Context, userID uint, refreshToken string) error {
	q := database.GetTx(ctx, s.db).Model(&models.RefreshToken{}).Where("user_id = ?", userID)
	if refreshToken != "" {
		q = q.Where("token_hash = ?", hashToken(refreshToken))
	}
	return q.Update("revoked", true).Error
}

// Me describes the current user with roles and effective permissions.
func (s *AuthService) Me(ctx context.Context, userID uint) (*dto.MeResponse, error) {
	var user models.User
	if err := database.GetTx(ctx, s.db).First(&user, userID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthenticated("User no longer exists")
		}
		return nil, err
	}

	roles, err := s.authz.UserRoleNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	perms, err := s.authz.EffectivePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.MeResponse{User: dto.NewUserResponse(&user), Roles: roles, Permissions: perms}, nil
}

func (s *AuthService) issueTokenPair(db *gorm.DB, user *models.User) (*dto.TokenResponse, error) {
	accessToken, expiresIn, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(db, user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) generateRefreshToken(db *gorm.DB, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err := db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
