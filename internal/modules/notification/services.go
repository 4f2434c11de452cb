package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/services"
	"gorm.io/gorm"
)

type NotificationService struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewNotificationService(db *gorm.DB, notifier *services.Notifier) *NotificationService {
	return &NotificationService{db: db, notifier: notifier}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*models.Notification, error) {
	return s.notifier.Create(ctx, req.NotifiableID, req.Type, req.Data)
}

func (s *NotificationService) Send(ctx context.Context, req *dto.SendNotificationRequest) (*models.Notification, error) {
	return s.notifier.Send(ctx, req.UserID, services.Message{
		Type:           req.Type,
		Title:          req.Title,
		Body:           req.Message,
		ActionURL:      req.ActionURL,
		AdditionalData: req.AdditionalData,
	})
}

func (s *NotificationService) SendBulk(ctx context.Context, req *dto.BulkSendNotificationRequest) dto.BulkResult {
	return s.notifier.SendBulk(ctx, req.UserIDs, services.Message{
		Type:           req.Type,
		Title:          req.Title,
		Body:           req.Message,
		ActionURL:      req.ActionURL,
		AdditionalData: req.AdditionalData,
	})
}

// List returns one page of userID's notifications, newest first, plus the
// user's overall unread count.
func (s *NotificationService) List(ctx context.Context, userID uint, f dto.NotificationFilter, q dto.PageQuery) (*dto.NotificationListResponse, error) {
	db := database.GetTx(ctx, s.db)
	query := db.Model(&models.Notification{}).Scopes(database.ForNotifiable(userID))
	if f.IsRead != nil {
		if *f.IsRead {
			query = query.Where("read_at IS NOT NULL")
		} else {
			query = query.Where("read_at IS NULL")
		}
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	var rows []models.Notification
	err := query.Order("created_at DESC").Order("id DESC").
		Scopes(database.Paginate(q.Page, q.PerPage)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	unread, err := s.countUnread(db, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.NotificationListResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(rows)),
		Pagination: dto.Pagination{
			Page:       q.Page,
			PerPage:    q.PerPage,
			Total:      total,
			TotalPages: database.TotalPages(total, q.PerPage),
		},
		UnreadCount: unread,
	}
	for i := range rows {
		resp.Notifications = append(resp.Notifications, dto.NewNotificationResponse(&rows[i]))
	}
	return resp, nil
}

// ListForUser is List for an arbitrary, existing user.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, f dto.NotificationFilter, q dto.PageQuery) (*dto.NotificationListResponse, error) {
	var n int64
	if err := database.GetTx(ctx, s.db).Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound("User not found")
	}
	return s.List(ctx, userID, f, q)
}

func (s *NotificationService) Stats(ctx context.Context, userID uint) (*dto.NotificationStats, error) {
	db := database.GetTx(ctx, s.db)

	var rows []struct {
		Type  string
		Count int64
	}
	err := db.Model(&models.Notification{}).
		Scopes(database.ForNotifiable(userID)).
		Select("type, COUNT(id) AS count").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	stats := &dto.NotificationStats{ByType: make(map[string]int64, len(rows))}
	for _, r := range rows {
		stats.Total += r.Count
		stats.ByType[r.Type] = r.Count
	}
	if stats.Unread, err = s.countUnread(db, userID); err != nil {
		return nil, err
	}
	stats.Read = stats.Total - stats.Unread
	return stats, nil
}

// Get returns a notification owned by userID with its data decoded.
func (s *NotificationService) Get(ctx context.Context, userID uint, id string) (*dto.NotificationResponse, error) {
	n, err := s.owned(database.GetTx(ctx, s.db), userID, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewNotificationResponse(n)
	var parsed map[string]any
	if err := json.Unmarshal(n.Data, &parsed); err == nil {
		resp.ParsedData = parsed
	}
	return &resp, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uint, id string, read bool) (*models.Notification, error) {
	db := database.GetTx(ctx, s.db)
	n, err := s.owned(db, userID, id)
	if err != nil {
		return nil, err
	}

	var readAt *time.Time
	if read {
		now := time.Now().UTC()
		readAt = &now
	}
	if err := db.Model(n).Update("read_at", readAt).Error; err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	n.ReadAt = readAt
	return n, nil
}

// MarkAllRead marks every unread notification of userID and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := database.GetTx(ctx, s.db).Model(&models.Notification{}).
		Scopes(database.ForNotifiable(userID)).
		Where("read_at IS NULL").
		Update("read_at", time.Now().UTC())
	return res.RowsAffected, res.Error
}

func (s *NotificationService) Delete(ctx context.Context, userID uint, id string) error {
	db := database.GetTx(ctx, s.db)
	n, err := s.owned(db, userID, id)
	if err != nil {
		return err
	}
	return db.Delete(n).Error
}

func (s *NotificationService) DeleteRead(ctx context.Context, userID uint) (int64, error) {
	res := database.GetTx(ctx, s.db).
		Scopes(database.ForNotifiable(userID)).
		Where("read_at IS NOT NULL").
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (s *NotificationService) BulkMarkRead(ctx context.Context, userID uint, ids []string) dto.BulkResult {
	result := services.RunBulk(ctx, s.db, ids, notificationLabel, func(ctx context.Context, id string) error {
		_, err := s.MarkRead(ctx, userID, id, true)
		return err
	})
	result.Message = fmt.Sprintf("Bulk mark read completed: %d successful, %d failed", result.SuccessCount, result.FailedCount)
	return result
}

func (s *NotificationService) BulkDelete(ctx context.Context, userID uint, ids []string) dto.BulkResult {
	result := services.RunBulk(ctx, s.db, ids, notificationLabel, func(ctx context.Context, id string) error {
		return s.Delete(ctx, userID, id)
	})
	result.Message = fmt.Sprintf("Bulk delete completed: %d successful, %d failed", result.SuccessCount, result.FailedCount)
	return result
}

func (s *NotificationService) owned(db *gorm.DB, userID uint, id string) (*models.Notification, error) {
	var n models.Notification
	if err := db.Where("id = ?", id).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Notification not found")
		}
		return nil, err
	}
	if n.NotifiableID != userID {
		return nil, apperr.PermissionDenied("Access denied")
	}
	return &n, nil
}

func (s *NotificationService) countUnread(db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.Model(&models.Notification{}).
		Scopes(database.ForNotifiable(userID)).
		Where("read_at IS NULL").
		Count(&n).Error
	return n, err
}

func notificationLabel(id string) string {
	return "Notification " + id
}
