package entity

import "time"

type MemberProgress struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ServiceHours   int       `json:"service_hours"`
	EventsAttended int       `json:"events_attended"`
	BadgesEarned   int       `json:"badges_earned"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type MemberNotification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
