package validation

import (
	"testing"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type permissionInput struct {
	Slug   string   `json:"slug" validate:"required,min=2,max=191,slug"`
	Status string   `json:"status" validate:"omitempty,oneof=draft review"`
	IDs    []uint   `json:"ids" validate:"omitempty,min=1"`
	Email  string   `json:"email" validate:"omitempty,email"`
	Tags   []string `json:"-"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Struct(&permissionInput{Slug: "documents.create", Status: "draft"}))
	})

	t.Run("bad slug uses json name", func(t *testing.T) {
		err := Struct(&permissionInput{Slug: "Bad Slug"})
		require.Error(t, err)
		assert.True(t, apperr.IsInvalidArgument(err))

		appErr, _ := apperr.As(err)
		assert.Contains(t, appErr.Details, "slug may only contain")
	})

	t.Run("multiple failures are joined", func(t *testing.T) {
		err := Struct(&permissionInput{Slug: "x", Status: "final", Email: "nope"})
		appErr, ok := apperr.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Details, "slug must be at least 2 characters long")
		assert.Contains(t, appErr.Details, "status must be one of: draft review")
		assert.Contains(t, appErr.Details, "email must be a valid email address")
	})
}

func TestSlugPattern(t *testing.T) {
	for _, ok := range []string{"users.create", "doc_rev-1", "a.b.c"} {
		assert.True(t, SlugPattern.MatchString(ok), ok)
	}
	for _, bad := range []string{"Users", "with space", "semi;colon", ""} {
		assert.False(t, SlugPattern.MatchString(bad), bad)
	}
}
