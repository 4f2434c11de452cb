package models

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Code       string    `gorm:"size:100;not null;uniqueIndex" json:"code"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	UploadedBy uint      `gorm:"not null;index" json:"uploaded_by"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const (
	RevisionStatusDraft    = "draft"
	RevisionStatusReview   = "review"
	RevisionStatusApproved = "approved"
	RevisionStatusRejected = "rejected"
)

// DocumentRevision is one numbered version of a document.
type DocumentRevision struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DocumentID     uint      `gorm:"not null;uniqueIndex:idx_revision_document_number" json:"document_id"`
	RevisionNumber int       `gorm:"not null;uniqueIndex:idx_revision_document_number" json:"revision_number"`
	FilePath       *string   `gorm:"size:500" json:"file_path"`
	RevisedBy      uint      `gorm:"not null;index" json:"revised_by"`
	Description    *string   `gorm:"type:text" json:"description"`
	AccFormat      *string   `gorm:"size:50" json:"acc_format"`
	AccContent     *string   `gorm:"type:text" json:"acc_content"`
	Status         string    `gorm:"size:20;not null;index" json:"status"`
	RevisedDoc     *string   `gorm:"size:500" json:"revised_doc"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const (
	HistoryActionCreated  = "created"
	HistoryActionUpdated  = "updated"
	HistoryActionApproved = "approved"
	HistoryActionRejected = "rejected"
	HistoryActionArchived = "archived"
	HistoryActionRestored = "restored"
)

// HistoryActions lists every action a history entry may record.
var HistoryActions = []string{
	HistoryActionCreated,
	HistoryActionUpdated,
	HistoryActionApproved,
	HistoryActionRejected,
	HistoryActionArchived,
	HistoryActionRestored,
}

type DocumentHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DocumentID  uint      `gorm:"not null;index" json:"document_id"`
	RevisionID  *uint     `gorm:"index" json:"revision_id"`
	Action      string    `gorm:"size:20;not null;index" json:"action"`
	PerformedBy uint      `gorm:"not null;index" json:"performed_by"`
	Reason      *string   `gorm:"type:text" json:"reason"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (DocumentHistory) TableName() string { return "document_histories" }
