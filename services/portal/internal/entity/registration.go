package entity

import "time"

// Registration is a membership application submitted from the public form.
type Registration struct {
	ID                   string    `json:"id"`
	RegistrationNumber   string    `json:"registration_number,omitempty" validate:"max=50"`
	Section              string    `json:"section" validate:"required,oneof=bunny cub bulbul scout guide rover ranger unit-leader"`
	Name                 string    `json:"name" validate:"required,max=100"`
	FatherName           string    `json:"father_name" validate:"required,max=100"`
	MotherName           string    `json:"mother_name" validate:"required,max=100"`
	DateOfBirth          string    `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	BloodGroup           string    `json:"blood_group" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	MobileNo             string    `json:"mobile_no" validate:"required,min=10,max=15"`
	Email                string    `json:"email" validate:"required,email"`
	CommunicationAddress string    `json:"communication_address" validate:"required"`
	PermanentAddress     string    `json:"permanent_address" validate:"required"`
	AlternateContact     string    `json:"alternate_contact,omitempty" validate:"max=15"`
	SchoolCollege        string    `json:"school_college,omitempty" validate:"max=200"`
	CreatedAt            time.Time `json:"created_at"`
}

type ContactInquiry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" validate:"max=20"`
	Message   string    `json:"message" validate:"required,max=5000"`
	CreatedAt time.Time `json:"created_at"`
}
