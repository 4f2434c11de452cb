package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/modules/history"
	"github.com/dcsystem/dcs-backend/internal/services"
	"gorm.io/gorm"
)

type DocumentService struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewDocumentService(db *gorm.DB, notifier *services.Notifier) *DocumentService {
	return &DocumentService{db: db, notifier: notifier}
}

func (s *DocumentService) List(ctx context.Context, f Filter, skip, limit int) ([]models.Document, error) {
	q := database.GetTx(ctx, s.db).Model(&models.Document{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}

	documents := []models.Document{}
	err := q.Order("id ASC").Scopes(database.Window(skip, limit)).Find(&documents).Error
	return documents, err
}

func (s *DocumentService) Get(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := database.GetTx(ctx, s.db).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Document not found")
		}
		return nil, err
	}
	return &doc, nil
}

// Create stores a document uploaded by actorID and records a created entry.
func (s *DocumentService) Create(ctx context.Context, actorID uint, req *CreateDocumentRequest) (*models.Document, error) {
	db := database.GetTx(ctx, s.db)
	code := strings.TrimSpace(req.Code)
	if err := s.ensureCodeFree(db, code, 0); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if err := ensureCategory(db, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	doc := &models.Document{
		Title:      strings.TrimSpace(req.Title),
		Code:       code,
		CategoryID: req.CategoryID,
		UploadedBy: actorID,
		IsActive:   true,
	}
	if req.IsActive != nil {
		doc.IsActive = *req.IsActive
	}
	if err := db.Create(doc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Document code already exists")
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	if err := history.Record(ctx, s.db, &history.Entry{
		DocumentID:  doc.ID,
		Action:      models.HistoryActionCreated,
		PerformedBy: actorID,
	}); err != nil {
		return nil, err
	}
	if err := s.notifier.NotifyDocumentCreated(ctx, actorID, doc); err != nil {
		slog.Warn("document created notification failed", "document_id", doc.ID, "error", err)
	}
	return doc, nil
}

func (s *DocumentService) Update(ctx context.Context, actorID, id uint, req *UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	db := database.GetTx(ctx, s.db)
	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if err := s.ensureCodeFree(db, code, id); err != nil {
			return nil, err
		}
		doc.Code = code
	}
	if req.CategoryID != nil {
		if err := ensureCategory(db, *req.CategoryID); err != nil {
			return nil, err
		}
		doc.CategoryID = req.CategoryID
	}
	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.IsActive != nil {
		doc.IsActive = *req.IsActive
	}

	if err := db.Save(doc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Document code already exists")
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	if err := history.Record(ctx, s.db, &history.Entry{
		DocumentID:  doc.ID,
		Action:      models.HistoryActionUpdated,
		PerformedBy: actorID,
	}); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes the document along with its revisions and history.
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	db := database.GetTx(ctx, s.db)
	if err := db.Where("document_id = ?", id).Delete(&models.DocumentHistory{}).Error; err != nil {
		return err
	}
	if err := db.Where("document_id = ?", id).Delete(&models.DocumentRevision{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Document{}, id).Error
}

// Revisions lists a document's revisions, highest number first.
func (s *DocumentService) Revisions(ctx context.Context, id uint) ([]models.DocumentRevision, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	revisions := []models.DocumentRevision{}
	err := database.GetTx(ctx, s.db).
		Where("document_id = ?", id).
		Order("revision_number DESC").
		Find(&revisions).Error
	return revisions, err
}

func (s *DocumentService) ensureCodeFree(db *gorm.DB, code string, exceptID uint) error {
	if code == "" {
		return apperr.InvalidArgument("Document code is required")
	}
	q := db.Model(&models.Document{}).Where("code = ?", code)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("Document code already exists")
	}
	return nil
}

func ensureCategory(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.InvalidArgument("Category not found")
	}
	return nil
}
