package services

import (
	"context"
	"testing"
	"time"

	"github.com/dcsystem/dcs-backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	authz       *Authorizer
	notifier    *Notifier
	roles       *RoleService
	permissions *PermissionService
	users       *UserService
	auth        *AuthService
	tokens      *TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	authz := NewAuthorizer(db)
	notifier := NewNotifier(db)
	roles := NewRoleService(db, authz, notifier)
	tokens, err := NewTokenIssuer(TokenConfig{
		Secret:    []byte("test-secret"),
		Algorithm: "HS256",
		Issuer:    "dcs-test",
		AccessTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	return &testEnv{
		db:          db,
		authz:       authz,
		notifier:    notifier,
		roles:       roles,
		permissions: NewPermissionService(db, roles),
		users:       NewUserService(db, authz, "Admin"),
		auth:        NewAuthService(db, tokens, authz, time.Hour),
		tokens:      tokens,
	}
}

var ctx = context.Background()
