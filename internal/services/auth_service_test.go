package services

import (
	"testing"
	"time"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Lea", "lea@example.com")

	resp, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "LEA@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := env.tokens.Parse(resp.AccessToken)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "lea@example.com", Password: "nope"})
	assert.True(t, apperr.IsUnauthenticated(err))

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assert.True(t, apperr.IsUnauthenticated(err))
}

func TestAuthService_RefreshRotates(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "Max", "max@example.com")

	first, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "max@example.com", Password: "password123"})
	require.NoError(t, err)

	second, err := env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken})
	assert.True(t, apperr.IsUnauthenticated(err))

	require.NoError(t, env.auth.Logout(ctx, second.User.ID, second.RefreshToken))
	_, err = env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: second.RefreshToken})
	assert.True(t, apperr.IsUnauthenticated(err))
}

func TestAuthService_Me(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Ned", "ned@example.com")
	role := testutil.CreateRole(t, env.db, "editor")
	testutil.Grant(t, env.db, role, "documents.create")
	testutil.AssignRole(t, env.db, user, role)

	me, err := env.auth.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, me.Roles)
	assert.Equal(t, []string{"documents.create"}, me.Permissions)

	_, err = env.auth.Me(ctx, 999)
	assert.True(t, apperr.IsUnauthenticated(err))
}

func TestTokenIssuer(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Oli", "oli@example.com")

	t.Run("rejects another key", func(t *testing.T) {
		other, err := NewTokenIssuer(TokenConfig{Secret: []byte("other"), Issuer: "dcs-test"})
		require.NoError(t, err)
		token, _, err := other.Issue(user)
		require.NoError(t, err)

		_, err = env.tokens.Parse(token)
		assert.Error(t, err)
	})

	t.Run("rejects another algorithm", func(t *testing.T) {
		other, err := NewTokenIssuer(TokenConfig{Secret: []byte("test-secret"), Algorithm: "HS512", Issuer: "dcs-test"})
		require.NoError(t, err)
		token, _, err := other.Issue(user)
		require.NoError(t, err)

		_, err = env.tokens.Parse(token)
		assert.Error(t, err)
	})

	t.Run("rejects expired", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "dcs-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = env.tokens.Parse(token)
		assert.Error(t, err)
	})

	t.Run("rejects unsupported configuration", func(t *testing.T) {
		_, err := NewTokenIssuer(TokenConfig{Secret: []byte("x"), Algorithm: "RS256"})
		assert.Error(t, err)
		_, err = NewTokenIssuer(TokenConfig{Algorithm: "HS256"})
		assert.Error(t, err)
	})
}
