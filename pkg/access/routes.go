package access

import "strings"

type Route struct {
	Path        string      `json:"path"`
	Requirement Requirement `json:"requirement"`
}

// Routes lists every page the portal serves. Unknown paths fall through to
// the not-found page, which is public.
var Routes = []Route{
	{Path: "/", Requirement: Public},
	{Path: "/home", Requirement: Public},
	{Path: "/about", Requirement: Public},
	{Path: "/programs", Requirement: Public},
	{Path: "/awards", Requirement: Public},
	{Path: "/news", Requirement: Public},
	{Path: "/gallery", Requirement: Public},
	{Path: "/contact", Requirement: Public},
	{Path: "/register", Requirement: Public},
	{Path: PathLogin, Requirement: Public},
	{Path: PathPendingApproval, Requirement: Public},
	{Path: PathMemberHome, Requirement: Authenticated},
	{Path: "/admin", Requirement: AdminOnly},
}

// RequirementFor resolves a request path against Routes. Sub-paths inherit
// the requirement of their closest listed parent, so /admin/users is admin-only.
func RequirementFor(path string) Requirement {
	if path == "" {
		path = "/"
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	best := -1
	var req Requirement
	for _, r := range Routes {
		if r.Path == "/" {
			continue
		}
		if path == r.Path || strings.HasPrefix(path, r.Path+"/") {
			if len(r.Path) > best {
				best = len(r.Path)
				req = r.Requirement
			}
		}
	}
	if best < 0 {
		return Public
	}
	return req.Normalize()
}
