package document

import "github.com/dcsystem/dcs-backend/internal/models"

type CreateDocumentRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	Code       string `json:"code" validate:"required,max=100"`
	CategoryID *uint  `json:"category_id"`
	IsActive   *bool  `json:"is_active"`
}

type UpdateDocumentRequest struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=255"`
	Code       *string `json:"code" validate:"omitempty,min=1,max=100"`
	CategoryID *uint   `json:"category_id"`
	IsActive   *bool   `json:"is_active"`
}

// Filter narrows a document listing. Nil fields match everything.
type Filter struct {
	CategoryID *uint
	IsActive   *bool
}

type DeleteResponse struct {
	Message           string `json:"message"`
	DeletedDocumentID uint   `json:"deleted_document_id"`
}

type RevisionsResponse struct {
	DocumentID uint                      `json:"document_id"`
	Revisions  []models.DocumentRevision `json:"revisions"`
	Total      int                       `json:"total"`
}
