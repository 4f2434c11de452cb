package dto

import (
	"encoding/json"
	"time"

	"github.com/dcsystem/dcs-backend/internal/models"
)

type CreateNotificationRequest struct {
	Type         string         `json:"type" validate:"required,max=191"`
	NotifiableID uint           `json:"notifiable_id" validate:"required"`
	Data         map[string]any `json:"data" validate:"required"`
}

type SendNotificationRequest struct {
	UserID         uint           `json:"user_id" validate:"required"`
	Type           string         `json:"type" validate:"required,max=191"`
	Title          string         `json:"title" validate:"required,max=255"`
	Message        string         `json:"message" validate:"required"`
	ActionURL      *string        `json:"action_url" validate:"omitempty,url"`
	AdditionalData map[string]any `json:"additional_data"`
}

type BulkSendNotificationRequest struct {
	UserIDs        []uint         `json:"user_ids" validate:"required,min=1"`
	Type           string         `json:"type" validate:"required,max=191"`
	Title          string         `json:"title" validate:"required,max=255"`
	Message        string         `json:"message" validate:"required"`
	ActionURL      *string        `json:"action_url" validate:"omitempty,url"`
	AdditionalData map[string]any `json:"additional_data"`
}

type NotificationIDsRequest struct {
	NotificationIDs []string `json:"notification_ids" validate:"required,min=1,dive,required"`
}

type NotificationFilter struct {
	IsRead *bool
	Type   string
}

type NotificationResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	NotifiableType string          `json:"notifiable_type"`
	NotifiableID   uint            `json:"notifiable_id"`
	Data           json.RawMessage `json:"data"`
	ParsedData     map[string]any  `json:"parsed_data,omitempty"`
	ReadAt         *time.Time      `json:"read_at"`
	IsRead         bool            `json:"is_read"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:             n.ID,
		Type:           n.Type,
		NotifiableType: n.NotifiableType,
		NotifiableID:   n.NotifiableID,
		Data:           json.RawMessage(n.Data),
		ReadAt:         n.ReadAt,
		IsRead:         n.IsRead(),
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Pagination    Pagination             `json:"pagination"`
	UnreadCount   int64                  `json:"unread_count"`
}

type NotificationStats struct {
	Total  int64            `json:"total"`
	Unread int64            `json:"unread"`
	Read   int64            `json:"read"`
	ByType map[string]int64 `json:"by_type"`
}
