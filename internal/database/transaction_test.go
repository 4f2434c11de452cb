package database

import (
	"context"
	"errors"
	"testing"

	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := tm.RunInTransaction(ctx, func(ctx context.Context) error {
			return GetTx(ctx, db).Create(&models.Role{Name: "Editor", Slug: "editor"}).Error
		})
		require.NoError(t, err)

		var count int64
		db.Model(&models.Role{}).Where("slug = ?", "editor").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		err := tm.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := GetTx(ctx, db).Create(&models.Role{Name: "Viewer", Slug: "viewer"}).Error; err != nil {
				return err
			}
			return errors.New("boom")
		})
		require.Error(t, err)

		var count int64
		db.Model(&models.Role{}).Where("slug = ?", "viewer").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("nested failure keeps outer writes", func(t *testing.T) {
		txCtx, tx, err := tm.Begin(ctx)
		require.NoError(t, err)

		require.NoError(t, GetTx(txCtx, db).Create(&models.Role{Name: "Outer", Slug: "outer"}).Error)
		innerErr := tm.RunInTransaction(txCtx, func(ctx context.Context) error {
			GetTx(ctx, db).Create(&models.Role{Name: "Inner", Slug: "inner"})
			return errors.New("inner failed")
		})
		require.Error(t, innerErr)
		require.NoError(t, tx.Commit().Error)

		var slugs []string
		db.Model(&models.Role{}).Where("slug IN ?", []string{"outer", "inner"}).Pluck("slug", &slugs)
		assert.Equal(t, []string{"outer"}, slugs)
	})
}

func TestPaginationHelpers(t *testing.T) {
	page, perPage := NormalizePage(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, MaxPerPage, perPage)

	assert.Equal(t, 3, TotalPages(21, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
}
