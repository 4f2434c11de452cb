package category

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

type DeleteResponse struct {
	Message           string `json:"message"`
	DeletedCategoryID uint   `json:"deleted_category_id"`
}
