package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationModel struct {
	ID                   string    `gorm:"type:uuid;primary_key"`
	RegistrationNumber   *string   `gorm:"type:varchar(50)"`
	Section              string    `gorm:"type:varchar(30);not null"`
	Name                 string    `gorm:"type:varchar(100);not null"`
	FatherName           string    `gorm:"type:varchar(100);not null"`
	MotherName           string    `gorm:"type:varchar(100);not null"`
	DateOfBirth          string    `gorm:"type:varchar(10);not null"`
	BloodGroup           string    `gorm:"type:varchar(5);not null"`
	MobileNo             string    `gorm:"type:varchar(15);not null"`
	Email                string    `gorm:"not null"`
	CommunicationAddress string    `gorm:"type:text;not null"`
	PermanentAddress     string    `gorm:"type:text;not null"`
	AlternateContact     *string   `gorm:"type:varchar(15)"`
	SchoolCollege        *string   `gorm:"type:varchar(200)"`
	CreatedAt            time.Time
}

func (RegistrationModel) TableName() string {
	return "member_registrations"
}

func (m *RegistrationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

type ContactInquiryModel struct {
	ID        string  `gorm:"type:uuid;primary_key"`
	Name      string  `gorm:"type:varchar(100);not null"`
	Email     string  `gorm:"not null"`
	Phone     *string `gorm:"type:varchar(20)"`
	Message   string  `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (ContactInquiryModel) TableName() string {
	return "contact_inquiries"
}

func (m *ContactInquiryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
