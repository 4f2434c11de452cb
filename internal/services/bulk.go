package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/dcsystem/dcs-backend/internal/database"
	"github.com/dcsystem/dcs-backend/internal/dto"
	"gorm.io/gorm"
)

// RunBulk applies fn to every item inside its own nested transaction.
// A failing item is rolled back alone and reported; the rest commit.
func RunBulk[T any](ctx context.Context, db *gorm.DB, items []T, label func(T) string, fn func(ctx context.Context, item T) error) dto.BulkResult {
	result := dto.BulkResult{
		TotalRequested: len(items),
		FailedItems:    []string{},
	}

	tm := database.NewTransactionManager(db)
	for _, item := range items {
		err := tm.RunInTransaction(ctx, func(ctx context.Context) error {
			return fn(ctx, item)
		})
		if err != nil {
			result.FailedCount++
			result.FailedItems = append(result.FailedItems, bulkFailure(label(item), err))
			continue
		}
		result.SuccessCount++
	}

	result.Message = fmt.Sprintf("Successfully processed %d out of %d items", result.SuccessCount, result.TotalRequested)
	return result
}

func bulkFailure(label string, err error) string {
	if appErr, ok := apperr.As(err); ok && appErr.Kind != apperr.KindInternal {
		return label + ": " + appErr.Message
	}
	slog.Error("bulk item failed", "item", label, "error", err)
	return label + ": internal error"
}

// translateDuplicate turns a unique-index violation into a Conflict so a
// lost check-then-write race still reports the right kind.
func translateDuplicate(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("%s", message)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
