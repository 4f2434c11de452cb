package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Details string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

type PageQuery struct {
	Page    int
	PerPage int
}

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// BulkResult reports a best-effort batch: each item succeeds or fails on
// its own and the successes are kept.
type BulkResult struct {
	SuccessCount   int      `json:"success_count"`
	FailedCount    int      `json:"failed_count"`
	TotalRequested int      `json:"total_requested"`
	Message        string   `json:"message"`
	FailedItems    []string `json:"failed_items"`
}

type IDsRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}
