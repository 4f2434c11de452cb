package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types raised by the service itself.
const (
	NotificationDocumentCreated   = "document_created"
	NotificationDocumentApproved  = "document_approved"
	NotificationDocumentRejected  = "document_rejected"
	NotificationRoleAssigned      = "role_assigned"
	NotificationPermissionGranted = "permission_granted"
)

// Message is the structured payload stored in a notification's data.
type Message struct {
	Type           string
	Title          string
	Body           string
	ActionURL      *string
	AdditionalData map[string]any
}

// Notifier writes notifications addressed to users.
type Notifier struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db, policy: bluemonday.StrictPolicy()}
}

// Create stores a notification with caller-provided data.
func (n *Notifier) Create(ctx context.Context, userID uint, notificationType string, data map[string]any) (*models.Notification, error) {
	db := database.GetTx(ctx, n.db)
	if err := ensureUser(db, userID); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, apperr.InvalidArgument("Invalid notification data")
	}

	notification := &models.Notification{
		Type:         notificationType,
		NotifiableID: userID,
		Data:         datatypes.JSON(raw),
	}
	if err := db.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

// Send stores a structured message for userID. Title and body are stripped
// of markup before they are persisted.
func (n *Notifier) Send(ctx context.Context, userID uint, msg Message) (*models.Notification, error) {
	data := make(map[string]any, len(msg.AdditionalData)+4)
	for k, v := range msg.AdditionalData {
		data[k] = v
	}
	data["title"] = n.policy.Sanitize(msg.Title)
	data["message"] = n.policy.Sanitize(msg.Body)
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	if msg.ActionURL != nil {
		data["action_url"] = *msg.ActionURL
	}
	return n.Create(ctx, userID, msg.Type, data)
}

// SendBulk sends msg to every user, reporting unknown users individually.
func (n *Notifier) SendBulk(ctx context.Context, userIDs []uint, msg Message) dto.BulkResult {
	result := RunBulk(ctx, n.db, userIDs,
		func(id uint) string { return fmt.Sprintf("User ID %d", id) },
		func(ctx context.Context, id uint) error {
			_, err := n.Send(ctx, id, msg)
			return err
		})
	result.Message = fmt.Sprintf("Notifications sent to %d out of %d users", result.SuccessCount, result.TotalRequested)
	return result
}

func (n *Notifier) NotifyRoleAssigned(ctx context.Context, userID uint, role *models.Role) error {
	_, err := n.Send(ctx, userID, Message{
		Type:           NotificationRoleAssigned,
		Title:          "New role assigned",
		Body:           fmt.Sprintf("You have been assigned the role '%s'", role.Name),
		AdditionalData: map[string]any{"role_id": role.ID, "role_name": role.Name},
	})
	return err
}

func (n *Notifier) NotifyPermissionGranted(ctx context.Context, userID uint, permission string) error {
	_, err := n.Send(ctx, userID, Message{
		Type:           NotificationPermissionGranted,
		Title:          "Permission granted",
		Body:           fmt.Sprintf("You have been granted the permission '%s'", permission),
		AdditionalData: map[string]any{"permission": permission},
	})
	return err
}

func (n *Notifier) NotifyDocumentCreated(ctx context.Context, userID uint, doc *models.Document) error {
	_, err := n.Send(ctx, userID, Message{
		Type:           NotificationDocumentCreated,
		Title:          "Document created",
		Body:           fmt.Sprintf("Document '%s' (%s) has been created", doc.Title, doc.Code),
		AdditionalData: map[string]any{"document_id": doc.ID, "document_code": doc.Code},
	})
	return err
}

// NotifyRevisionReviewed tells the document's uploader about an approval or
// rejection.
func (n *Notifier) NotifyRevisionReviewed(ctx context.Context, userID uint, doc *models.Document, rev *models.DocumentRevision) error {
	notificationType, verb := NotificationDocumentApproved, "approved"
	if rev.Status == models.RevisionStatusRejected {
		notificationType, verb = NotificationDocumentRejected, "rejected"
	}
	_, err := n.Send(ctx, userID, Message{
		Type:  notificationType,
		Title: "Revision " + verb,
		Body:  fmt.Sprintf("Revision %d of '%s' was %s", rev.RevisionNumber, doc.Title, verb),
		AdditionalData: map[string]any{
			"document_id":     doc.ID,
			"revision_id":     rev.ID,
			"revision_number": rev.RevisionNumber,
		},
	})
	return err
}

func ensureUser(db *gorm.DB, userID uint) error {
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
