package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (NotificationModel) TableName() string {
	return "member_notifications"
}

func (m *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// ProfileNameModel reads only the display name of a profile.
type ProfileNameModel struct {
	ID       string `gorm:"type:uuid;primary_key"`
	FullName string `gorm:"type:varchar(200)"`
}

func (ProfileNameModel) TableName() string {
	return "profiles"
}
