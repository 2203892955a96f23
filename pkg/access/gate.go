package access

import "fmt"

type DecisionKind string

const (
	Allow                DecisionKind = "allow"
	ShowLoadingIndicator DecisionKind = "loading"
	Redirect             DecisionKind = "redirect"
)

const (
	PathLogin           = "/login"
	PathPendingApproval = "/pending-approval"
	PathMemberHome      = "/member"
)

type Decision struct {
	Kind   DecisionKind `json:"kind"`
	Target string       `json:"target,omitempty"`
}

func RedirectTo(target string) Decision {
	return Decision{Kind: Redirect, Target: target}
}

func (d Decision) Allowed() bool {
	return d.Kind == Allow
}

func (d Decision) String() string {
	if d.Kind == Redirect {
		return fmt.Sprintf("redirect:%s", d.Target)
	}
	return string(d.Kind)
}

// IsExemptFromApproval reports whether a role skips the approval check.
// Admins are treated as pre-approved whatever their status column holds.
func IsExemptFromApproval(role Role) bool {
	return role == RoleAdmin
}

// Decide is evaluated top to bottom; each check assumes the previous ones passed.
func Decide(session Session, requirement Requirement) Decision {
	requirement = requirement.Normalize()

	if session.Loading {
		return Decision{Kind: ShowLoadingIndicator}
	}
	if !requirement.RequiresAuth {
		return Decision{Kind: Allow}
	}
	if session.Identity == nil {
		return RedirectTo(PathLogin)
	}

	if !IsExemptFromApproval(session.Role) {
		switch session.Status {
		case StatusApproved:
		case StatusRejected:
			return RedirectTo(PathLogin)
		default:
			return RedirectTo(PathPendingApproval)
		}
	}

	if requirement.RequiresAdmin && session.Role != RoleAdmin {
		return RedirectTo(PathMemberHome)
	}
	return Decision{Kind: Allow}
}
