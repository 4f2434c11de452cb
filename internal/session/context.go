package session

import (
	"errors"

	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey = "user"
	userKey  = "current_user"
)

var ErrNoIdentity = errors.New("no authenticated user in context")

// ClaimsFromToken extracts the verified access token claims placed in
// locals by the JWT middleware.
func ClaimsFromToken(c *fiber.Ctx) (*services.Claims, error) {
	token, ok := c.Locals(tokenKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(*services.Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// SetUser records the resolved caller for the rest of the request.
func SetUser(c *fiber.Ctx, user *models.User) {
	c.Locals(userKey, user)
}

// GetUser returns the caller resolved by the identity middleware.
func GetUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userKey).(*models.User)
	if !ok || user == nil {
		return nil, ErrNoIdentity
	}
	return user, nil
}

// GetUserID returns the id of the resolved caller.
func GetUserID(c *fiber.Ctx) (uint, error) {
	user, err := GetUser(c)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}
