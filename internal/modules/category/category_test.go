package category

import (
	"context"
	"net/http"
	"testing"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/dcsystem/dcs-backend/internal/testutil"
	"github.com/dcsystem/dcs-backend/internal/testutil/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewCategoryService(db)

	policies, err := svc.Create(ctx, &CreateCategoryRequest{Name: "Policies"})
	require.NoError(t, err)

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateCategoryRequest{Name: "Policies"})
		assert.True(t, apperr.IsConflict(err))
	})

	t.Run("rename to own name is allowed", func(t *testing.T) {
		name := "Policies"
		updated, err := svc.Update(ctx, policies.ID, &UpdateCategoryRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Policies", updated.Name)
	})

	t.Run("rename onto another category conflicts", func(t *testing.T) {
		other, err := svc.Create(ctx, &CreateCategoryRequest{Name: "Procedures"})
		require.NoError(t, err)
		name := "Policies"
		_, err = svc.Update(ctx, other.ID, &UpdateCategoryRequest{Name: &name})
		assert.True(t, apperr.IsConflict(err))
	})

	t.Run("delete blocked while documents use it", func(t *testing.T) {
		owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
		require.NoError(t, db.Create(&models.Document{
			Title: "Handbook", Code: "HB-1", CategoryID: &policies.ID, UploadedBy: owner.ID, IsActive: true,
		}).Error)

		err := svc.Delete(ctx, policies.ID)
		require.Error(t, err)
		assert.True(t, apperr.IsConflict(err))
		assert.Contains(t, err.Error(), "Cannot delete category. 1 documents still using this category")
	})

	t.Run("missing category", func(t *testing.T) {
		_, err := svc.Get(ctx, 999)
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestCategoryRoutes(t *testing.T) {
	env := apitest.New(t, New())
	editor := env.Editor(t, "editor@example.com", services.PermCategoriesCreate)
	reader := testutil.CreateUser(t, env.DB, "Reader", "reader@example.com")

	var created models.Category
	status := env.Do(t, http.MethodPost, "/api/v1/categories", editor, CreateCategoryRequest{Name: "Manuals"}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Manuals", created.Name)

	status = env.Do(t, http.MethodPost, "/api/v1/categories", reader, CreateCategoryRequest{Name: "Other"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = env.Do(t, http.MethodPost, "/api/v1/categories", nil, CreateCategoryRequest{Name: "Other"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var list []models.Category
	status = env.Do(t, http.MethodGet, "/api/v1/categories?skip=0&limit=10", reader, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 1)

	var count int64
	env.DB.Model(&models.Category{}).Where("name = ?", "Other").Count(&count)
	assert.Zero(t, count)
}
