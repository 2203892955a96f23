// Package access holds the access-control decision used by every protected
// page: given the current session and a route's requirement it decides
// whether to render the page or where to send the visitor instead.
package access

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseRole maps unknown or empty values to RoleMember.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// ParseStatus maps unknown or empty values to StatusPending.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusApproved, StatusRejected:
		return Status(s)
	default:
		return StatusPending
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// Session is the derived view of who is signed in. Role and Status are
// meaningful only when Identity is set.
type Session struct {
	Identity *Identity `json:"identity"`
	Role     Role      `json:"role,omitempty"`
	Status   Status    `json:"status,omitempty"`
	Loading  bool      `json:"loading"`
}

func (s Session) Authenticated() bool {
	return s.Identity != nil
}

// Anonymous returns a resolved session with nobody signed in.
func Anonymous() Session {
	return Session{}
}

type Requirement struct {
	RequiresAuth  bool `json:"requires_auth"`
	RequiresAdmin bool `json:"requires_admin"`
}

var (
	Public        = Requirement{}
	Authenticated = Requirement{RequiresAuth: true}
	AdminOnly     = Requirement{RequiresAuth: true, RequiresAdmin: true}
)

// Normalize makes an admin-only requirement an authenticated one.
func (r Requirement) Normalize() Requirement {
	if r.RequiresAdmin {
		r.RequiresAuth = true
	}
	return r
}
