package history

import "github.com/dcsystem/dcs-backend/internal/models"

type CreateHistoryRequest struct {
	DocumentID uint    `json:"document_id" validate:"required"`
	RevisionID *uint   `json:"revision_id"`
	Action     string  `json:"action" validate:"required,oneof=created updated approved rejected archived restored"`
	Reason     *string `json:"reason"`
}

type UpdateHistoryRequest struct {
	RevisionID *uint   `json:"revision_id"`
	Action     *string `json:"action" validate:"omitempty,oneof=created updated approved rejected archived restored"`
	Reason     *string `json:"reason"`
}

// Filter narrows a history listing. Zero values match everything.
type Filter struct {
	DocumentID  *uint
	Action      string
	PerformedBy *uint
}

type Summary struct {
	TotalActions     int64            `json:"total_actions"`
	ActionsBreakdown map[string]int64 `json:"actions_breakdown"`
}

type DeleteResponse struct {
	Message          string `json:"message"`
	DeletedHistoryID uint   `json:"deleted_history_id"`
}

// Entry is what other modules record when they change a document.
type Entry = models.DocumentHistory
