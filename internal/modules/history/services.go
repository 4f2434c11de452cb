package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/models"
	"gorm.io/gorm"
)

type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record appends an entry inside the caller's transaction. Document and
// revision modules use it to keep the audit trail next to their writes.
func Record(ctx context.Context, db *gorm.DB, entry *Entry) error {
	if !slices.Contains(models.HistoryActions, entry.Action) {
		return apperr.InvalidArgument("Invalid history action '%s'", entry.Action)
	}
	if err := database.GetTx(ctx, db).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

func (s *HistoryService) List(ctx context.Context, f Filter, skip, limit int) ([]models.DocumentHistory, error) {
	q := database.GetTx(ctx, s.db).Model(&models.DocumentHistory{})
	if f.DocumentID != nil {
		q = q.Where("document_id = ?", *f.DocumentID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.PerformedBy != nil {
		q = q.Where("performed_by = ?", *f.PerformedBy)
	}

	entries := []models.DocumentHistory{}
	err := q.Order("created_at DESC").Order("id DESC").
		Scopes(database.Window(skip, limit)).
		Find(&entries).Error
	return entries, err
}

func (s *HistoryService) Get(ctx context.Context, id uint) (*models.DocumentHistory, error) {
	var entry models.DocumentHistory
	if err := database.GetTx(ctx, s.db).First(&entry, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Document history not found")
		}
		return nil, err
	}
	return &entry, nil
}

// Create records an entry performed by actorID. The revision, when given,
// must belong to the document.
func (s *HistoryService) Create(ctx context.Context, actorID uint, req *CreateHistoryRequest) (*models.DocumentHistory, error) {
	db := database.GetTx(ctx, s.db)
	if err := ensureDocument(db, req.DocumentID); err != nil {
		return nil, err
	}
	if req.RevisionID != nil {
		if err := ensureRevisionOf(db, *req.RevisionID, req.DocumentID); err != nil {
			return nil, err
		}
	}

	entry := &models.DocumentHistory{
		DocumentID:  req.DocumentID,
		RevisionID:  req.RevisionID,
		Action:      req.Action,
		PerformedBy: actorID,
		Reason:      req.Reason,
	}
	if err := Record(ctx, s.db, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *HistoryService) Update(ctx context.Context, id uint, req *UpdateHistoryRequest) (*models.DocumentHistory, error) {
	db := database.GetTx(ctx, s.db)
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RevisionID != nil {
		if err := ensureRevisionOf(db, *req.RevisionID, entry.DocumentID); err != nil {
			return nil, err
		}
		entry.RevisionID = req.RevisionID
	}
	if req.Action != nil {
		entry.Action = *req.Action
	}
	if req.Reason != nil {
		entry.Reason = req.Reason
	}

	if err := db.Save(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to update history: %w", err)
	}
	return entry, nil
}

func (s *HistoryService) Delete(ctx context.Context, id uint) error {
	res := database.GetTx(ctx, s.db).Delete(&models.DocumentHistory{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Document history not found")
	}
	return nil
}

// ByDocument lists a document's entries, newest first.
func (s *HistoryService) ByDocument(ctx context.Context, documentID uint, action string, skip, limit int) ([]models.DocumentHistory, error) {
	if err := ensureDocument(database.GetTx(ctx, s.db), documentID); err != nil {
		return nil, err
	}
	return s.List(ctx, Filter{DocumentID: &documentID, Action: action}, skip, limit)
}

// Summarize counts entries per action. end is exclusive.
func (s *HistoryService) Summarize(ctx context.Context, documentID *uint, start, end *time.Time) (*Summary, error) {
	q := database.GetTx(ctx, s.db).Model(&models.DocumentHistory{})
	if documentID != nil {
		q = q.Where("document_id = ?", *documentID)
	}
	if start != nil {
		q = q.Where("created_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("created_at < ?", *end)
	}

	var rows []struct {
		Action string
		Count  int64
	}
	if err := q.Select("action, COUNT(id) AS count").Group("action").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize history: %w", err)
	}

	summary := &Summary{ActionsBreakdown: make(map[string]int64, len(rows))}
	for _, r := range rows {
		summary.TotalActions += r.Count
		summary.ActionsBreakdown[r.Action] = r.Count
	}
	return summary, nil
}

func ensureDocument(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&models.Document{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Document not found")
	}
	return nil
}

func ensureRevisionOf(db *gorm.DB, revisionID, documentID uint) error {
	var n int64
	err := db.Model(&models.DocumentRevision{}).
		Where("id = ? AND document_id = ?", revisionID, documentID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.InvalidArgument("Revision not found or doesn't belong to this document")
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
