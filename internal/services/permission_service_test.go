package services

import (
	"testing"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionService_Create(t *testing.T) {
	env := newTestEnv(t)

	perm, err := env.permissions.CreatePermission(ctx, &dto.CreatePermissionRequest{Slug: "documents.read"})
	require.NoError(t, err)
	assert.NotZero(t, perm.ID)

	_, err = env.permissions.CreatePermission(ctx, &dto.CreatePermissionRequest{Slug: "documents.read"})
	assert.True(t, apperr.IsConflict(err))

	for _, bad := range []string{"Documents.Read", "a", "with space", "semi;colon"} {
		_, err := env.permissions.CreatePermission(ctx, &dto.CreatePermissionRequest{Slug: bad})
		assert.True(t, apperr.IsInvalidArgument(err), bad)
	}

	var n int64
	env.db.Model(&models.Permission{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestPermissionService_AssignToRole(t *testing.T) {
	env := newTestEnv(t)
	role := testutil.CreateRole(t, env.db, "editor")
	testutil.CreatePermission(t, env.db, "documents.create")
	testutil.CreatePermission(t, env.db, "documents.update")

	resp, err := env.permissions.AssignPermissionsToRole(ctx, role.ID, []string{"documents.create", "documents.update", "documents.create"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalPermissions)
	assert.Equal(t, "editor", resp.RoleSlug)

	t.Run("idempotent", func(t *testing.T) {
		resp, err := env.permissions.AssignPermissionsToRole(ctx, role.ID, []string{"documents.create", "documents.update"})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.TotalPermissions)

		var rows int64
		env.db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&rows)
		assert.Equal(t, int64(2), rows)
	})

	t.Run("missing slugs are reported and nothing is granted", func(t *testing.T) {
		other := testutil.CreateRole(t, env.db, "other")
		_, err := env.permissions.AssignPermissionsToRole(ctx, other.ID, []string{"documents.create", "nope.one", "nope.two"})
		require.True(t, apperr.IsNotFound(err))
		appErr, _ := apperr.As(err)
		assert.Equal(t, "Permissions not found: nope.one, nope.two", appErr.Message)

		var rows int64
		env.db.Model(&models.RolePermission{}).Where("role_id = ?", other.ID).Count(&rows)
		assert.Zero(t, rows)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := env.permissions.AssignPermissionsToRole(ctx, 999, []string{"documents.create"})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("unassign ignores unknown slugs", func(t *testing.T) {
		resp, err := env.permissions.UnassignPermissionsFromRole(ctx, role.ID, []string{"documents.update", "ghost.slug"})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.TotalPermissions)
		assert.Equal(t, "documents.create", resp.Permissions[0].Slug)
	})
}

func TestPermissionService_AssignNotifiesHolders(t *testing.T) {
	env := newTestEnv(t)
	role := testutil.CreateRole(t, env.db, "editor")
	holder := testutil.CreateUser(t, env.db, "Holder", "holder@example.com")
	outsider := testutil.CreateUser(t, env.db, "Outsider", "outsider@example.com")
	testutil.AssignRole(t, env.db, holder, role)
	testutil.Grant(t, env.db, role, "documents.create")
	testutil.CreatePermission(t, env.db, "documents.update")

	granted := func(userID uint) []models.Notification {
		var list []models.Notification
		require.NoError(t, env.db.
			Where("notifiable_id = ? AND type = ?", userID, NotificationPermissionGranted).
			Find(&list).Error)
		return list
	}

	_, err := env.permissions.AssignPermissionsToRole(ctx, role.ID, []string{"documents.create", "documents.update"})
	require.NoError(t, err)

	list := granted(holder.ID)
	require.Len(t, list, 1)
	assert.Contains(t, string(list[0].Data), "documents.update")
	assert.Empty(t, granted(outsider.ID))

	_, err = env.permissions.AssignPermissionsToRole(ctx, role.ID, []string{"documents.update"})
	require.NoError(t, err)
	assert.Len(t, granted(holder.ID), 1)
}

func TestPermissionService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	role := testutil.CreateRole(t, env.db, "editor")
	testutil.Grant(t, env.db, role, "documents.create", "documents.delete")

	var perm models.Permission
	require.NoError(t, env.db.Where("slug = ?", "documents.delete").First(&perm).Error)

	result := env.permissions.BulkDeletePermissions(ctx, []uint{perm.ID, 4242})
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, []string{"Permission ID 4242: Permission not found"}, result.FailedItems)

	resp, err := env.permissions.RolePermissions(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalPermissions)

	var orphans int64
	env.db.Model(&models.RolePermission{}).Where("permission_id = ?", perm.ID).Count(&orphans)
	assert.Zero(t, orphans)
}

func TestPermissionService_UpdateAndSearch(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreatePermission(t, env.db, "documents.read")
	testutil.CreatePermission(t, env.db, "roles.manage")

	_, err := env.permissions.UpdatePermission(ctx, a.ID, &dto.UpdatePermissionRequest{Slug: strPtr("roles.manage")})
	assert.True(t, apperr.IsConflict(err))

	updated, err := env.permissions.UpdatePermission(ctx, a.ID, &dto.UpdatePermissionRequest{Description: strPtr("Read documents")})
	require.NoError(t, err)
	assert.Equal(t, "Read documents", *updated.Description)

	perms, total, err := env.permissions.ListPermissions(ctx, dto.PageQuery{Page: 1, PerPage: 10}, "READ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "documents.read", perms[0].Slug)
}
