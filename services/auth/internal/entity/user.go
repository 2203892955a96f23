package entity

import "time"

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

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Profile struct {
	ID        string        `json:"id"`
	FullName  string        `json:"full_name"`
	Phone     string        `json:"phone"`
	Role      UserRole      `json:"role"`
	Status    ProfileStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// AuthResult is returned by every operation that issues tokens.
type AuthResult struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         *User    `json:"user"`
	Profile      *Profile `json:"profile"`
}
