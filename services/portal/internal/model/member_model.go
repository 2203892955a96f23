package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberProgressModel struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID         string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	ServiceHours   int       `gorm:"default:0" json:"service_hours"`
	EventsAttended int       `gorm:"default:0" json:"events_attended"`
	BadgesEarned   int       `gorm:"default:0" json:"badges_earned"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (MemberProgressModel) TableName() string {
	return "member_progress"
}

func (m *MemberProgressModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

type MemberNotificationModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (MemberNotificationModel) TableName() string {
	return "member_notifications"
}

func (m *MemberNotificationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
