package revision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/modules/history"
	"github.com/dcsystem/dcs-backend/internal/services"
	"gorm.io/gorm"
)

type RevisionService struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewRevisionService(db *gorm.DB, notifier *services.Notifier) *RevisionService {
	return &RevisionService{db: db, notifier: notifier}
}

func (s *RevisionService) List(ctx context.Context, f Filter, skip, limit int) ([]models.DocumentRevision, error) {
	q := database.GetTx(ctx, s.db).Model(&models.DocumentRevision{})
	if f.DocumentID != nil {
		q = q.Where("document_id = ?", *f.DocumentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	revisions := []models.DocumentRevision{}
	err := q.Order("id ASC").Scopes(database.Window(skip, limit)).Find(&revisions).Error
	return revisions, err
}

func (s *RevisionService) Get(ctx context.Context, id uint) (*models.DocumentRevision, error) {
	var rev models.DocumentRevision
	if err := database.GetTx(ctx, s.db).First(&rev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Document revision not found")
		}
		return nil, err
	}
	return &rev, nil
}

// Create adds a revision authored by actorID.
func (s *RevisionService) Create(ctx context.Context, actorID uint, req *CreateRevisionRequest) (*models.DocumentRevision, error) {
	db := database.GetTx(ctx, s.db)
	if _, err := s.document(db, req.DocumentID); err != nil {
		return nil, err
	}
	if err := s.ensureNumberFree(db, req.DocumentID, req.RevisionNumber, 0); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.RevisionStatusDraft
	}
	rev := &models.DocumentRevision{
		DocumentID:     req.DocumentID,
		RevisionNumber: req.RevisionNumber,
		FilePath:       req.FilePath,
		RevisedBy:      actorID,
		Description:    req.Description,
		AccFormat:      req.AccFormat,
		AccContent:     req.AccContent,
		Status:         status,
		RevisedDoc:     req.RevisedDoc,
	}
	if err := db.Create(rev).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicateNumber(rev.RevisionNumber)
		}
		return nil, fmt.Errorf("failed to create revision: %w", err)
	}
	return rev, nil
}

func (s *RevisionService) Update(ctx context.Context, id uint, req *UpdateRevisionRequest) (*models.DocumentRevision, error) {
	rev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	db := database.GetTx(ctx, s.db)
	if req.RevisionNumber != nil && *req.RevisionNumber != rev.RevisionNumber {
		if err := s.ensureNumberFree(db, rev.DocumentID, *req.RevisionNumber, id); err != nil {
			return nil, err
		}
		rev.RevisionNumber = *req.RevisionNumber
	}
	if req.FilePath != nil {
		rev.FilePath = req.FilePath
	}
	if req.Description != nil {
		rev.Description = req.Description
	}
	if req.AccFormat != nil {
		rev.AccFormat = req.AccFormat
	}
	if req.AccContent != nil {
		rev.AccContent = req.AccContent
	}
	if req.RevisedDoc != nil {
		rev.RevisedDoc = req.RevisedDoc
	}

	if err := db.Save(rev).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicateNumber(rev.RevisionNumber)
		}
		return nil, fmt.Errorf("failed to update revision: %w", err)
	}
	return rev, nil
}

func (s *RevisionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	db := database.GetTx(ctx, s.db)
	if err := db.Model(&models.DocumentHistory{}).
		Where("revision_id = ?", id).
		Update("revision_id", nil).Error; err != nil {
		return err
	}
	return db.Delete(&models.DocumentRevision{}, id).Error
}

// ByDocument lists a document's revisions, highest number first.
func (s *RevisionService) ByDocument(ctx context.Context, documentID uint, status string, skip, limit int) ([]models.DocumentRevision, error) {
	db := database.GetTx(ctx, s.db)
	if _, err := s.document(db, documentID); err != nil {
		return nil, err
	}

	q := db.Where("document_id = ?", documentID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	revisions := []models.DocumentRevision{}
	err := q.Order("revision_number DESC").Scopes(database.Window(skip, limit)).Find(&revisions).Error
	return revisions, err
}

func (s *RevisionService) Latest(ctx context.Context, documentID uint) (*models.DocumentRevision, error) {
	db := database.GetTx(ctx, s.db)
	if _, err := s.document(db, documentID); err != nil {
		return nil, err
	}

	var rev models.DocumentRevision
	err := db.Where("document_id = ?", documentID).Order("revision_number DESC").First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No revisions found for this document")
		}
		return nil, err
	}
	return &rev, nil
}

// ChangeStatus moves a revision to status. Approved is terminal. Approving
// or rejecting records history and notifies the document's uploader.
func (s *RevisionService) ChangeStatus(ctx context.Context, actorID, id uint, req *StatusRequest) (*models.DocumentRevision, error) {
	rev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev.Status == models.RevisionStatusApproved && req.Status != models.RevisionStatusApproved {
		return nil, apperr.InvalidArgument("Cannot change status of already approved revision")
	}
	if rev.Status == req.Status {
		return rev, nil
	}

	db := database.GetTx(ctx, s.db)
	rev.Status = req.Status
	if err := db.Model(rev).Update("status", rev.Status).Error; err != nil {
		return nil, fmt.Errorf("failed to update revision status: %w", err)
	}

	var action string
	switch rev.Status {
	case models.RevisionStatusApproved:
		action = models.HistoryActionApproved
	case models.RevisionStatusRejected:
		action = models.HistoryActionRejected
	default:
		return rev, nil
	}

	doc, err := s.document(db, rev.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := history.Record(ctx, s.db, &history.Entry{
		DocumentID:  doc.ID,
		RevisionID:  &rev.ID,
		Action:      action,
		PerformedBy: actorID,
		Reason:      req.Reason,
	}); err != nil {
		return nil, err
	}
	if err := s.notifier.NotifyRevisionReviewed(ctx, doc.UploadedBy, doc, rev); err != nil {
		slog.Warn("revision review notification failed", "revision_id", rev.ID, "error", err)
	}
	return rev, nil
}

func (s *RevisionService) document(db *gorm.DB, id uint) (*models.Document, error) {
	var doc models.Document
	if err := db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Document not found")
		}
		return nil, err
	}
	return &doc, nil
}

func (s *RevisionService) ensureNumberFree(db *gorm.DB, documentID uint, number int, exceptID uint) error {
	q := db.Model(&models.DocumentRevision{}).
		Where("document_id = ? AND revision_number = ?", documentID, number)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return duplicateNumber(number)
	}
	return nil
}

func duplicateNumber(number int) error {
	return apperr.Conflict("Revision number %d already exists for this document", number)
}
