package services

import (
	"testing"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizer_UnionAcrossRoles(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Ana", "ana@example.com")
	editor := testutil.CreateRole(t, env.db, "editor")
	reviewer := testutil.CreateRole(t, env.db, "reviewer")
	testutil.Grant(t, env.db, editor, "documents.create", "documents.update")
	testutil.Grant(t, env.db, reviewer, "documents.update", "revisions.approve")
	testutil.AssignRole(t, env.db, user, editor)
	testutil.AssignRole(t, env.db, user, reviewer)

	perms, err := env.authz.EffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"documents.create", "documents.update", "revisions.approve"}, perms)

	via, err := env.authz.GrantedVia(ctx, user.ID, "documents.update")
	require.NoError(t, err)
	assert.Equal(t, []string{"editor", "reviewer"}, via)

	t.Run("removal from one role keeps the grant from the other", func(t *testing.T) {
		_, err := env.permissions.UnassignPermissionsFromRole(ctx, editor.ID, []string{"documents.update"})
		require.NoError(t, err)

		ok, err := env.authz.UserHasPermission(ctx, user.ID, "documents.update")
		require.NoError(t, err)
		assert.True(t, ok)

		via, err := env.authz.GrantedVia(ctx, user.ID, "documents.update")
		require.NoError(t, err)
		assert.Equal(t, []string{"reviewer"}, via)
	})
}

func TestAuthorizer_UnknownSubjects(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Bo", "bo@example.com")

	ok, err := env.authz.UserHasPermission(ctx, 9999, "documents.create")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.authz.UserHasPermission(ctx, user.ID, "no.such.permission")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.authz.UserHasRole(ctx, 9999, "Admin")
	require.NoError(t, err)
	assert.False(t, ok)

	perms, err := env.authz.EffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestAuthorizer_HasRoleIsExact(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Cy", "cy@example.com")
	testutil.AssignRole(t, env.db, user, testutil.CreateRole(t, env.db, "Admin"))

	ok, err := env.authz.UserHasRole(ctx, user.ID, "Admin")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.authz.UserHasRole(ctx, user.ID, "admin")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("names differing only in case stay distinct", func(t *testing.T) {
		other := testutil.CreateUser(t, env.db, "Ed", "ed@example.com")
		testutil.AssignRole(t, env.db, other, testutil.CreateRole(t, env.db, "reviewer"))
		require.NoError(t, env.db.Create(&models.Role{Name: "Reviewer", Slug: "lead-reviewer"}).Error)

		ok, err := env.authz.UserHasRole(ctx, other.ID, "reviewer")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = env.authz.UserHasRole(ctx, other.ID, "Reviewer")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAuthorizer_Checks(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Di", "di@example.com")

	err := env.authz.CheckPermission(ctx, user.ID, "documents.create")
	assert.True(t, apperr.IsPermissionDenied(err))

	err = env.authz.CheckRole(ctx, user.ID, "Admin")
	assert.True(t, apperr.IsPermissionDenied(err))
}
