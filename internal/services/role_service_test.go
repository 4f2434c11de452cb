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

func strPtr(s string) *string { return &s }

func TestRoleService_CreateRole(t *testing.T) {
	env := newTestEnv(t)

	t.Run("derives slug from name", func(t *testing.T) {
		role, err := env.roles.CreateRole(ctx, &dto.CreateRoleRequest{Name: "Content Editor"})
		require.NoError(t, err)
		assert.Equal(t, "content-editor", role.Slug)
	})

	t.Run("normalises explicit slug", func(t *testing.T) {
		role, err := env.roles.CreateRole(ctx, &dto.CreateRoleRequest{Name: "Auditor", Slug: strPtr("Senior Auditor")})
		require.NoError(t, err)
		assert.Equal(t, "senior-auditor", role.Slug)
	})

	t.Run("rejects slug that is not url safe", func(t *testing.T) {
		_, err := env.roles.CreateRole(ctx, &dto.CreateRoleRequest{Name: "Ops", Slug: strPtr("ops/admin!?")})
		assert.True(t, apperr.IsInvalidArgument(err))

		var n int64
		env.db.Model(&models.Role{}).Where("name = ?", "Ops").Count(&n)
		assert.Zero(t, n)
	})

	t.Run("derived slug drops unsafe characters", func(t *testing.T) {
		role, err := env.roles.CreateRole(ctx, &dto.CreateRoleRequest{Name: "R&D Lead"})
		require.NoError(t, err)
		assert.Equal(t, "rd-lead", role.Slug)
	})

	t.Run("duplicate name conflicts without writing", func(t *testing.T) {
		_, err := env.roles.CreateRole(ctx, &dto.CreateRoleRequest{Name: "Content Editor", Slug: strPtr("other")})
		assert.True(t, apperr.IsConflict(err))

		var n int64
		env.db.Model(&models.Role{}).Where("slug = ?", "other").Count(&n)
		assert.Zero(t, n)
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		_, err := env.roles.CreateRole(ctx, &dto.CreateRoleRequest{Name: "Another", Slug: strPtr("content-editor")})
		assert.True(t, apperr.IsConflict(err))
	})
}

func TestRoleService_UpdateRole(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateRole(t, env.db, "alpha")
	testutil.CreateRole(t, env.db, "beta")

	updated, err := env.roles.UpdateRole(ctx, a.ID, &dto.UpdateRoleRequest{Name: strPtr("Alpha Prime")})
	require.NoError(t, err)
	assert.Equal(t, "Alpha Prime", updated.Name)
	assert.Equal(t, "alpha", updated.Slug)

	updated, err = env.roles.UpdateRole(ctx, a.ID, &dto.UpdateRoleRequest{Slug: strPtr("Alpha Prime")})
	require.NoError(t, err)
	assert.Equal(t, "alpha-prime", updated.Slug)

	_, err = env.roles.UpdateRole(ctx, a.ID, &dto.UpdateRoleRequest{Slug: strPtr("alpha/prime")})
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = env.roles.UpdateRole(ctx, a.ID, &dto.UpdateRoleRequest{Name: strPtr("beta")})
	assert.True(t, apperr.IsConflict(err))

	_, err = env.roles.UpdateRole(ctx, 999, &dto.UpdateRoleRequest{Name: strPtr("x")})
	assert.True(t, apperr.IsNotFound(err))
}

func TestRoleService_RenameKeepsSlug(t *testing.T) {
	env := newTestEnv(t)
	reviewer, err := env.roles.CreateRole(ctx, &dto.CreateRoleRequest{Name: "Reviewer", Slug: strPtr("qa")})
	require.NoError(t, err)
	_, err = env.roles.CreateRole(ctx, &dto.CreateRoleRequest{Name: "Writer Team", Slug: strPtr("writer")})
	require.NoError(t, err)

	renamed, err := env.roles.UpdateRole(ctx, reviewer.ID, &dto.UpdateRoleRequest{Name: strPtr("Writer")})
	require.NoError(t, err)
	assert.Equal(t, "Writer", renamed.Name)
	assert.Equal(t, "qa", renamed.Slug)
}

func TestRoleService_AssignAndUnassign(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Eve", "eve@example.com")
	role := testutil.CreateRole(t, env.db, "editor")

	_, err := env.roles.AssignRoleToUser(ctx, user.ID, role.ID)
	require.NoError(t, err)

	ok, err := env.authz.UserHasRole(ctx, user.ID, "editor")
	require.NoError(t, err)
	assert.True(t, ok)

	var notifications []models.Notification
	require.NoError(t, env.db.Where("notifiable_id = ?", user.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, NotificationRoleAssigned, notifications[0].Type)

	t.Run("assigning twice conflicts", func(t *testing.T) {
		_, err := env.roles.AssignRoleToUser(ctx, user.ID, role.ID)
		assert.True(t, apperr.IsConflict(err))
	})

	t.Run("missing endpoints", func(t *testing.T) {
		_, err := env.roles.AssignRoleToUser(ctx, 999, role.ID)
		assert.True(t, apperr.IsNotFound(err))
		_, err = env.roles.AssignRoleToUser(ctx, user.ID, 999)
		assert.True(t, apperr.IsNotFound(err))
	})

	_, err = env.roles.UnassignRoleFromUser(ctx, user.ID, role.ID)
	require.NoError(t, err)
	ok, err = env.authz.UserHasRole(ctx, user.ID, "editor")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("unassigning a role not held", func(t *testing.T) {
		_, err := env.roles.UnassignRoleFromUser(ctx, user.ID, role.ID)
		assert.True(t, apperr.IsInvalidArgument(err))
	})
}

func TestRoleService_DeleteRole(t *testing.T) {
	setup := func(t *testing.T) (*testEnv, *models.Role) {
		env := newTestEnv(t)
		role := testutil.CreateRole(t, env.db, "editor")
		testutil.Grant(t, env.db, role, "documents.create", "documents.update")
		for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			testutil.AssignRole(t, env.db, testutil.CreateUser(t, env.db, email, email), role)
		}
		return env, role
	}

	t.Run("blocked while users hold it", func(t *testing.T) {
		env, role := setup(t)

		_, err := env.roles.DeleteRole(ctx, role.ID, false)
		require.True(t, apperr.IsConflict(err))
		appErr, _ := apperr.As(err)
		assert.Equal(t, "Cannot delete role. 3 users still have this role", appErr.Message)

		_, err = env.roles.GetRole(ctx, role.ID)
		assert.NoError(t, err)
	})

	t.Run("forced delete cascades", func(t *testing.T) {
		env, role := setup(t)

		removed, err := env.roles.DeleteRole(ctx, role.ID, true)
		require.NoError(t, err)
		assert.Equal(t, int64(3), removed)

		var memberships, grants int64
		env.db.Model(&models.UserRole{}).Where("role_id = ?", role.ID).Count(&memberships)
		env.db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&grants)
		assert.Zero(t, memberships)
		assert.Zero(t, grants)

		_, err = env.roles.GetRole(ctx, role.ID)
		assert.True(t, apperr.IsNotFound(err))

		var users []models.User
		require.NoError(t, env.db.Find(&users).Error)
		for _, u := range users {
			ok, err := env.authz.UserHasPermission(ctx, u.ID, "documents.create")
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("unused role deletes with its grants", func(t *testing.T) {
		env := newTestEnv(t)
		role := testutil.CreateRole(t, env.db, "lonely")
		testutil.Grant(t, env.db, role, "documents.create")

		_, err := env.roles.DeleteRole(ctx, role.ID, false)
		require.NoError(t, err)

		var grants int64
		env.db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&grants)
		assert.Zero(t, grants)
	})
}

func TestRoleService_BulkAssignPartialSuccess(t *testing.T) {
	env := newTestEnv(t)
	role := testutil.CreateRole(t, env.db, "viewer")
	var ids []uint
	for _, email := range []string{"u1@example.com", "u2@example.com", "u3@example.com"} {
		ids = append(ids, testutil.CreateUser(t, env.db, email, email).ID)
	}
	ids = append(ids, 9001, 9002)

	result, err := env.roles.BulkAssignRole(ctx, ids, role.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalRequested)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 2, result.FailedCount)
	assert.Equal(t, []string{"User ID 9001: User not found", "User ID 9002: User not found"}, result.FailedItems)

	var members int64
	env.db.Model(&models.UserRole{}).Where("role_id = ?", role.ID).Count(&members)
	assert.Equal(t, int64(3), members)

	t.Run("unknown role rejects the whole batch", func(t *testing.T) {
		_, err := env.roles.BulkAssignRole(ctx, ids, 999)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("bulk unassign reports non-members", func(t *testing.T) {
		result, err := env.roles.BulkUnassignRole(ctx, ids, role.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, result.SuccessCount)
		assert.Equal(t, 2, result.FailedCount)
	})
}

func TestRoleService_ListAndMembers(t *testing.T) {
	env := newTestEnv(t)
	role := testutil.CreateRole(t, env.db, "Document Reviewer")
	testutil.CreateRole(t, env.db, "Editor")
	user := testutil.CreateUser(t, env.db, "Fay", "fay@example.com")
	testutil.AssignRole(t, env.db, user, role)

	roles, total, err := env.roles.ListRoles(ctx, dto.PageQuery{Page: 1, PerPage: 10}, "review")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Document Reviewer", roles[0].Name)

	_, members, err := env.roles.RoleUsers(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, user.ID, members[0].ID)

	held, err := env.roles.UserRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, held, 1)

	_, err = env.roles.UserRoles(ctx, 999)
	assert.True(t, apperr.IsNotFound(err))
}
