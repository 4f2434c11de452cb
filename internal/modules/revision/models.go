package revision

type CreateRevisionRequest struct {
	DocumentID     uint    `json:"document_id" validate:"required"`
	RevisionNumber int     `json:"revision_number" validate:"required,min=1"`
	FilePath       *string `json:"file_path" validate:"omitempty,max=500"`
	Description    *string `json:"description"`
	AccFormat      *string `json:"acc_format" validate:"omitempty,max=50"`
	AccContent     *string `json:"acc_content"`
	Status         string  `json:"status" validate:"omitempty,oneof=draft review approved rejected"`
	RevisedDoc     *string `json:"revised_doc" validate:"omitempty,max=500"`
}

// UpdateRevisionRequest edits revision content. Status moves only through
// the status endpoint.
type UpdateRevisionRequest struct {
	RevisionNumber *int    `json:"revision_number" validate:"omitempty,min=1"`
	FilePath       *string `json:"file_path" validate:"omitempty,max=500"`
	Description    *string `json:"description"`
	AccFormat      *string `json:"acc_format" validate:"omitempty,max=50"`
	AccContent     *string `json:"acc_content"`
	RevisedDoc     *string `json:"revised_doc" validate:"omitempty,max=500"`
}

type StatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=draft review approved rejected"`
	Reason *string `json:"reason"`
}

// Filter narrows a revision listing. Zero values match everything.
type Filter struct {
	DocumentID *uint
	Status     string
}

type DeleteResponse struct {
	Message           string `json:"message"`
	DeletedRevisionID uint   `json:"deleted_revision_id"`
}
