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

type Profile struct {
	ID        string        `json:"id"`
	Email     string        `json:"email,omitempty"`
	FullName  string        `json:"full_name"`
	Phone     string        `json:"phone"`
	Role      UserRole      `json:"role"`
	Status    ProfileStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// UserGroups is the admin view of every profile split by approval status.
type UserGroups struct {
	Pending  []*Profile `json:"pending"`
	Approved []*Profile `json:"approved"`
	Rejected []*Profile `json:"rejected"`
}
