package middleware

import (
	"errors"

	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/dcsystem/dcs-backend/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: message, Type: "unauthenticated",
	})
}

// JWTProtected verifies the bearer token with the issuer's key and
// algorithm. Missing, malformed and expired tokens all answer 401.
func JWTProtected(tokens *services.TokenIssuer) fiber.Handler {
	cfg := tokens.Config()
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: cfg.Algorithm, Key: cfg.Secret},
		Claims:     &services.Claims{},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		},
	})
}

// Identity resolves the token subject to a stored user. A token whose user
// has since been deleted is treated as unauthenticated.
func Identity(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := session.ClaimsFromToken(c)
		if err != nil {
			return unauthorized(c, "Unauthorized")
		}
		userID, err := claims.UserID()
		if err != nil {
			return unauthorized(c, "Unauthorized: invalid subject")
		}

		var user models.User
		if err := database.GetTx(c.UserContext(), db).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unauthorized(c, "Unauthorized: user no longer exists")
			}
			return err
		}

		session.SetUser(c, &user)
		return c.Next()
	}
}

// Authenticated chains token verification and identity resolution.
func Authenticated(tokens *services.TokenIssuer, db *gorm.DB) []fiber.Handler {
	return []fiber.Handler{JWTProtected(tokens), Identity(db)}
}
