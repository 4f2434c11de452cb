// Package httpx holds the request parsing and error response helpers shared
// by every handler.
package httpx

import (
	"errors"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Error writes err as a JSON error body. Classified errors keep their
// message; anything else is logged and hidden behind a generic 500.
func Error(c *fiber.Ctx, err error) error {
	err = classify(err)
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind == apperr.KindInternal {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error", Type: string(apperr.KindInternal),
		})
	}

	return c.Status(appErr.Status()).JSON(dto.ErrorResponse{
		Error:   true,
		Message: appErr.Message,
		Type:    string(appErr.Kind),
		Details: appErr.Details,
	})
}

// classify maps storage errors that escaped a service onto apperr kinds.
// Unique violations surface here when a concurrent insert wins the race
// past a service's existence check.
func classify(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("Resource already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("Resource not found")
	}
	return err
}

// Fail writes a classified error built in place.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// Bind parses the JSON body into req and validates it.
func Bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperr.InvalidArgument("Invalid request body")
	}
	return validation.Struct(req)
}

// ParamString reads a path parameter and decodes percent escapes, which
// fiber leaves in place.
func ParamString(c *fiber.Ctx, name string) (string, error) {
	value, err := url.PathUnescape(c.Params(name))
	if err != nil {
		return "", apperr.InvalidArgument("Invalid %s", name)
	}
	return value, nil
}

// ParamID reads a positive integer path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidArgument("Invalid %s", name)
	}
	return uint(id), nil
}

// QueryUint reads an optional positive integer query parameter.
func QueryUint(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperr.InvalidArgument("Invalid %s", name)
	}
	v := uint(id)
	return &v, nil
}

// QueryBool reads an optional boolean query parameter.
func QueryBool(c *fiber.Ctx, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.InvalidArgument("Invalid %s", name)
	}
	return &b, nil
}

// Page reads page/per_page query parameters.
func Page(c *fiber.Ctx) dto.PageQuery {
	page, perPage := database.NormalizePage(c.QueryInt("page", 1), c.QueryInt("per_page", database.DefaultPerPage))
	return dto.PageQuery{Page: page, PerPage: perPage}
}

// Window reads skip/limit query parameters.
func Window(c *fiber.Ctx) (int, int) {
	return c.QueryInt("skip", 0), c.QueryInt("limit", database.MaxPerPage)
}

// Paginated builds the pagination envelope for total rows.
func Paginated(q dto.PageQuery, total int64) dto.Pagination {
	return dto.Pagination{
		Page:       q.Page,
		PerPage:    q.PerPage,
		Total:      total,
		TotalPages: database.TotalPages(total, q.PerPage),
	}
}
