package model

import "time"

type ProfileModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	FullName  string    `gorm:"type:varchar(200)" json:"full_name"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	Role      string    `gorm:"type:varchar(20);default:'member'" json:"role"`
	Status    string    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}
