package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const NotifiableUser = `App\Models\User`

// Notification is a message addressed to a single user.
type Notification struct {
	ID             string         `gorm:"size:36;primaryKey" json:"id"`
	Type           string         `gorm:"size:191;not null;index" json:"type"`
	NotifiableType string         `gorm:"size:191;not null" json:"notifiable_type"`
	NotifiableID   uint           `gorm:"not null;index" json:"notifiable_id"`
	Data           datatypes.JSON `gorm:"not null" json:"data"`
	ReadAt         *time.Time     `gorm:"index" json:"read_at"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.NotifiableType == "" {
		n.NotifiableType = NotifiableUser
	}
	return nil
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
