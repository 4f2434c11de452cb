// Package apitest boots the HTTP stack against an in-memory database for
// handler tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dcsystem/dcs-backend/internal/config"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/middleware"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/modules"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/dcsystem/dcs-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type Env struct {
	DB       *gorm.DB
	App      *fiber.App
	Tokens   *services.TokenIssuer
	Authz    *services.Authorizer
	Notifier *services.Notifier
}

// New mounts mods under /api/v1 behind the request transaction and the
// bearer token middleware.
func New(t *testing.T, mods ...modules.Module) *Env {
	t.Helper()

	db := testutil.NewDB(t)
	tokens, err := services.NewTokenIssuer(services.TokenConfig{
		Secret:    []byte("apitest-secret"),
		Algorithm: "HS256",
		Issuer:    "dcs-test",
		AccessTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	env := &Env{
		DB:       db,
		App:      fiber.New(),
		Tokens:   tokens,
		Authz:    services.NewAuthorizer(db),
		Notifier: services.NewNotifier(db),
	}
	deps := &modules.Deps{
		DB:       db,
		Config:   &config.Config{AdminRoleName: "Admin"},
		Authz:    env.Authz,
		Notifier: env.Notifier,
	}

	v1 := env.App.Group("/api/v1", middleware.Transactional(database.NewTransactionManager(db)))
	auth := middleware.Authenticated(tokens, db)
	for _, m := range mods {
		m.RegisterRoutes(v1.Group("/"+m.ID(), auth...), deps)
	}
	return env
}

// Do sends a JSON request as user (anonymous when nil) and decodes the
// response body into out when out is non-nil.
func (e *Env) Do(t *testing.T, method, path string, user *models.User, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if user != nil {
		token, _, err := e.Tokens.Issue(user)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// Editor creates a user holding a role granted slugs.
func (e *Env) Editor(t *testing.T, email string, slugs ...string) *models.User {
	t.Helper()

	user := testutil.CreateUser(t, e.DB, "Editor", email)
	role := testutil.CreateRole(t, e.DB, "editor-"+email)
	testutil.Grant(t, e.DB, role, slugs...)
	testutil.AssignRole(t, e.DB, user, role)
	return user
}
