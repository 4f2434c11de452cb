package database

import "gorm.io/gorm"

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Paginate returns a scope applying page/per_page (1-based) limits.
func Paginate(page, perPage int) func(db *gorm.DB) *gorm.DB {
	page, perPage = NormalizePage(page, perPage)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * perPage).Limit(perPage)
	}
}

// Window returns a scope applying skip/limit offsets.
func Window(skip, limit int) func(db *gorm.DB) *gorm.DB {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxPerPage {
		limit = MaxPerPage
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(skip).Limit(limit)
	}
}

// ForNotifiable filters notifications addressed to userID.
func ForNotifiable(userID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("notifiable_id = ?", userID)
	}
}

func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// TotalPages returns the page count for total rows.
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
