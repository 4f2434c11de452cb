package revision

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/dcsystem/dcs-backend/internal/testutil"
	"github.com/dcsystem/dcs-backend/internal/testutil/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createDocument(t *testing.T, db *gorm.DB, owner *models.User, code string) *models.Document {
	t.Helper()
	doc := &models.Document{Title: "Doc " + code, Code: code, UploadedBy: owner.ID, IsActive: true}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

func TestRevisionNumbering(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	svc := NewRevisionService(db, services.NewNotifier(db))
	doc := createDocument(t, db, owner, "SOP-1")
	other := createDocument(t, db, owner, "SOP-2")

	first, err := svc.Create(ctx, owner.ID, &CreateRevisionRequest{DocumentID: doc.ID, RevisionNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, models.RevisionStatusDraft, first.Status)
	assert.Equal(t, owner.ID, first.RevisedBy)

	_, err = svc.Create(ctx, owner.ID, &CreateRevisionRequest{DocumentID: doc.ID, RevisionNumber: 1})
	assert.True(t, apperr.IsConflict(err))

	_, err = svc.Create(ctx, owner.ID, &CreateRevisionRequest{DocumentID: other.ID, RevisionNumber: 1})
	require.NoError(t, err, "numbers are unique per document only")

	_, err = svc.Create(ctx, owner.ID, &CreateRevisionRequest{DocumentID: 999, RevisionNumber: 1})
	assert.True(t, apperr.IsNotFound(err))

	second, err := svc.Create(ctx, owner.ID, &CreateRevisionRequest{DocumentID: doc.ID, RevisionNumber: 2, Status: models.RevisionStatusReview})
	require.NoError(t, err)

	one := 1
	_, err = svc.Update(ctx, second.ID, &UpdateRevisionRequest{RevisionNumber: &one})
	assert.True(t, apperr.IsConflict(err))

	latest, err := svc.Latest(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.RevisionNumber)

	byDoc, err := svc.ByDocument(ctx, doc.ID, "", 0, 100)
	require.NoError(t, err)
	require.Len(t, byDoc, 2)
	assert.Equal(t, 2, byDoc[0].RevisionNumber)

	drafts, err := svc.ByDocument(ctx, doc.ID, models.RevisionStatusDraft, 0, 100)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)

	empty := createDocument(t, db, owner, "SOP-3")
	_, err = svc.Latest(ctx, empty.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	approver := testutil.CreateUser(t, db, "Approver", "approver@example.com")
	svc := NewRevisionService(db, services.NewNotifier(db))
	doc := createDocument(t, db, owner, "WI-1")

	rev, err := svc.Create(ctx, owner.ID, &CreateRevisionRequest{DocumentID: doc.ID, RevisionNumber: 1})
	require.NoError(t, err)

	reason := "looks good"
	approved, err := svc.ChangeStatus(ctx, approver.ID, rev.ID, &StatusRequest{Status: models.RevisionStatusApproved, Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, models.RevisionStatusApproved, approved.Status)

	var entry models.DocumentHistory
	require.NoError(t, db.Where("revision_id = ?", rev.ID).First(&entry).Error)
	assert.Equal(t, models.HistoryActionApproved, entry.Action)
	assert.Equal(t, approver.ID, entry.PerformedBy)

	var notified int64
	db.Model(&models.Notification{}).
		Where("notifiable_id = ? AND type = ?", owner.ID, services.NotificationDocumentApproved).
		Count(&notified)
	assert.EqualValues(t, 1, notified)

	t.Run("approved is terminal", func(t *testing.T) {
		_, err := svc.ChangeStatus(ctx, approver.ID, rev.ID, &StatusRequest{Status: models.RevisionStatusDraft})
		assert.True(t, apperr.IsInvalidArgument(err))
	})

	t.Run("re-approving is a no-op", func(t *testing.T) {
		_, err := svc.ChangeStatus(ctx, approver.ID, rev.ID, &StatusRequest{Status: models.RevisionStatusApproved})
		require.NoError(t, err)
		var n int64
		db.Model(&models.DocumentHistory{}).Where("revision_id = ?", rev.ID).Count(&n)
		assert.EqualValues(t, 1, n)
	})

	t.Run("reject notifies uploader", func(t *testing.T) {
		r2, err := svc.Create(ctx, owner.ID, &CreateRevisionRequest{DocumentID: doc.ID, RevisionNumber: 2})
		require.NoError(t, err)
		_, err = svc.ChangeStatus(ctx, approver.ID, r2.ID, &StatusRequest{Status: models.RevisionStatusRejected})
		require.NoError(t, err)

		var n int64
		db.Model(&models.Notification{}).
			Where("notifiable_id = ? AND type = ?", owner.ID, services.NotificationDocumentRejected).
			Count(&n)
		assert.EqualValues(t, 1, n)
	})
}

func TestDeleteRevisionKeepsHistory(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	svc := NewRevisionService(db, services.NewNotifier(db))
	doc := createDocument(t, db, owner, "DEL-1")

	rev, err := svc.Create(ctx, owner.ID, &CreateRevisionRequest{DocumentID: doc.ID, RevisionNumber: 1})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, owner.ID, rev.ID, &StatusRequest{Status: models.RevisionStatusRejected})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rev.ID))

	var entry models.DocumentHistory
	require.NoError(t, db.Where("document_id = ?", doc.ID).First(&entry).Error)
	assert.Nil(t, entry.RevisionID)

	assert.True(t, apperr.IsNotFound(svc.Delete(ctx, rev.ID)))
}

func TestStatusRoute(t *testing.T) {
	env := apitest.New(t, New())
	owner := env.Editor(t, "owner@example.com", services.PermRevisionsCreate)
	approver := env.Editor(t, "approver@example.com", services.PermRevisionsApprove)
	doc := createDocument(t, env.DB, owner, "R-1")

	var rev models.DocumentRevision
	status := env.Do(t, http.MethodPost, "/api/v1/document-revisions", owner,
		CreateRevisionRequest{DocumentID: doc.ID, RevisionNumber: 1}, &rev)
	require.Equal(t, http.StatusCreated, status)

	path := fmt.Sprintf("/api/v1/document-revisions/%d/status", rev.ID)
	status = env.Do(t, http.MethodPatch, path, owner, StatusRequest{Status: models.RevisionStatusApproved}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = env.Do(t, http.MethodPatch, path+"?new_status=bogus", approver, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var approved models.DocumentRevision
	status = env.Do(t, http.MethodPatch, path+"?new_status=approved", approver, nil, &approved)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.RevisionStatusApproved, approved.Status)

	status = env.Do(t, http.MethodPatch, path, approver, StatusRequest{Status: models.RevisionStatusDraft}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var latest models.DocumentRevision
	status = env.Do(t, http.MethodGet, fmt.Sprintf("/api/v1/document-revisions/document/%d/latest", doc.ID), owner, nil, &latest)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, rev.ID, latest.ID)
}
