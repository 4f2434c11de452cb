package middleware

import (
	"log/slog"

	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/gofiber/fiber/v2"
)

// Transactional wraps each mutating request in one database transaction.
// The transaction commits when the handler answers below 400 and rolls
// back on errors, error statuses and panics.
func Transactional(tm *database.TransactionManager) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		ctx, tx, beginErr := tm.Begin(c.UserContext())
		if beginErr != nil {
			return beginErr
		}
		c.SetUserContext(ctx)

		committed := false
		defer func() {
			if committed {
				return
			}
			if rbErr := tx.Rollback().Error; rbErr != nil {
				slog.Error("transaction rollback failed", "path", c.Path(), "error", rbErr)
			}
		}()

		if err = c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			return nil
		}
		if err = tx.Commit().Error; err != nil {
			return err
		}
		committed = true
		return nil
	}
}
