package notification

// MarkReadRequest toggles a notification's read state. An empty body marks
// it read.
type MarkReadRequest struct {
	MarkAsRead *bool `json:"mark_as_read"`
}

type CountResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}
