package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

type ProfileStatus string

const (
	StatusPending  ProfileStatus = "pending"
	StatusApproved ProfileStatus = "approved"
	StatusRejected ProfileStatus = "rejected"
)

// User is an identity known to the auth service.
type User struct {
	ID        string         `gorm:"type:uuid;primary_key" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	FullName  string         `gorm:"type:varchar(200)" json:"full_name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Profile shares its primary key with the user it belongs to.
type Profile struct {
	ID        string        `gorm:"type:uuid;primary_key" json:"id"`
	FullName  string        `gorm:"type:varchar(200)" json:"full_name"`
	Phone     string        `gorm:"type:varchar(30)" json:"phone"`
	Role      UserRole      `gorm:"type:varchar(20);default:'member'" json:"role"`
	Status    ProfileStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.Role == "" {
		p.Role = RoleMember
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	return nil
}
