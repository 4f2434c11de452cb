package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/models"
	"gorm.io/gorm"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) List(ctx context.Context, skip, limit int) ([]models.Category, error) {
	categories := []models.Category{}
	err := database.GetTx(ctx, s.db).
		Order("id ASC").
		Scopes(database.Window(skip, limit)).
		Find(&categories).Error
	return categories, err
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := database.GetTx(ctx, s.db).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Category not found")
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	db := database.GetTx(ctx, s.db)
	if err := s.ensureNameFree(db, name, 0); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, req *UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	db := database.GetTx(ctx, s.db)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.ensureNameFree(db, name, id); err != nil {
			return nil, err
		}
		category.Name = name
	}

	if err := db.Save(category).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// Delete removes a category no document refers to.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	db := database.GetTx(ctx, s.db)
	var inUse int64
	if err := db.Model(&models.Document{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
		return err
	}
	if inUse > 0 {
		return apperr.Conflict("Cannot delete category. %d documents still using this category", inUse)
	}

	return db.Delete(&models.Category{}, id).Error
}

func (s *CategoryService) ensureNameFree(db *gorm.DB, name string, exceptID uint) error {
	if name == "" {
		return apperr.InvalidArgument("Category name is required")
	}
	q := db.Model(&models.Category{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("Category name already exists")
	}
	return nil
}
