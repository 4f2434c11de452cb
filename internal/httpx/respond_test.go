package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func decodeError(t *testing.T, body io.Reader) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestError(t *testing.T) {
	app := fiber.New()
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return Error(c, apperr.Conflict("Role name already exists"))
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return Error(c, errors.New("pq: connection refused"))
	})
	app.Get("/duplicate", func(c *fiber.Ctx) error {
		return Error(c, fmt.Errorf("create document: %w", gorm.ErrDuplicatedKey))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeError(t, resp.Body)
	assert.True(t, body.Error)
	assert.Equal(t, "Role name already exists", body.Message)
	assert.Equal(t, "conflict", body.Type)

	resp, err = app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", decodeError(t, resp.Body).Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/duplicate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestBind(t *testing.T) {
	type req struct {
		Slug string `json:"slug" validate:"required,slug"`
	}

	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var r req
		if err := Bind(c, &r); err != nil {
			return Error(c, err)
		}
		return c.JSON(r)
	})

	send := func(body string) int {
		r := httptest.NewRequest("POST", "/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(r)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, send(`{"slug":"documents.read"}`))
	assert.Equal(t, fiber.StatusBadRequest, send(`{"slug":"Not Valid"}`))
	assert.Equal(t, fiber.StatusBadRequest, send(`{"slug":`))
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return Error(c, err)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
