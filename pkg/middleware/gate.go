package middleware

import (
	"net/http"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/jwt"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/session"

	"github.com/gin-gonic/gin"
)

const SessionKey = "session"

// ResolveSession builds the request's session from its access token and the
// caller's profile row. A missing, invalid or expired token is an anonymous
// session. A missing profile row, or a failed lookup, yields member/pending.
func ResolveSession(c *gin.Context, jwtService *jwt.Service, profiles session.ProfileFetcher, log *logger.Logger) access.Session {
	token, ok := TokenFromRequest(c)
	if !ok || token == "" {
		return access.Anonymous()
	}
	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		return access.Anonymous()
	}

	sess := access.Session{
		Identity: &access.Identity{ID: claims.UserID, Email: claims.Email},
		Role:     access.RoleMember,
		Status:   access.StatusPending,
	}

	profile, err := profiles.FetchProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Warn("Failed to fetch profile for %s, using defaults: %v", claims.UserID, err)
		return sess
	}
	if profile != nil {
		sess.Role = access.ParseRole(string(profile.Role))
		sess.Status = access.ParseStatus(string(profile.Status))
		sess.Identity.FullName = profile.FullName
	}
	return sess
}

// PageGate guards HTML pages using the static route table. Redirect
// decisions become 302 responses.
func PageGate(jwtService *jwt.Service, profiles session.ProfileFetcher, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requirement := access.RequirementFor(c.Request.URL.Path)
		sess := sessionFor(c, jwtService, profiles, log)

		decision := access.Decide(sess, requirement)
		switch decision.Kind {
		case access.Allow:
			setSession(c, sess)
			c.Next()
		case access.Redirect:
			c.Redirect(http.StatusFound, decision.Target)
			c.Abort()
		default:
			c.Header("Retry-After", "1")
			c.AbortWithStatus(http.StatusServiceUnavailable)
		}
	}
}

// APIGate guards JSON endpoints with a fixed requirement. Redirect decisions
// become 401 (sign in) or 403 responses that still name the target.
func APIGate(jwtService *jwt.Service, profiles session.ProfileFetcher, log *logger.Logger, requirement access.Requirement) gin.HandlerFunc {
	requirement = requirement.Normalize()
	return func(c *gin.Context) {
		sess := sessionFor(c, jwtService, profiles, log)

		decision := access.Decide(sess, requirement)
		switch {
		case decision.Allowed():
			setSession(c, sess)
			c.Next()
		case decision.Kind == access.Redirect && decision.Target == access.PathLogin:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "redirect": decision.Target})
			c.Abort()
		case decision.Kind == access.Redirect && decision.Target == access.PathPendingApproval:
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is awaiting approval", "redirect": decision.Target})
			c.Abort()
		case decision.Kind == access.Redirect:
			c.JSON(http.StatusForbidden, gin.H{"error": "Administrator access required", "redirect": decision.Target})
			c.Abort()
		default:
			c.Header("Retry-After", "1")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session is loading"})
			c.Abort()
		}
	}
}

// CurrentSession returns the session stored by a gate, or an anonymous one.
func CurrentSession(c *gin.Context) access.Session {
	if v, ok := c.Get(SessionKey); ok {
		if sess, ok := v.(access.Session); ok {
			return sess
		}
	}
	return access.Anonymous()
}

// A session already resolved earlier in the chain is reused.
func sessionFor(c *gin.Context, jwtService *jwt.Service, profiles session.ProfileFetcher, log *logger.Logger) access.Session {
	if v, ok := c.Get(SessionKey); ok {
		if sess, ok := v.(access.Session); ok {
			return sess
		}
	}
	return ResolveSession(c, jwtService, profiles, log)
}

func setSession(c *gin.Context, sess access.Session) {
	c.Set(SessionKey, sess)
	if sess.Identity != nil {
		c.Set("user_id", sess.Identity.ID)
		c.Set("user_email", sess.Identity.Email)
		c.Set("user_role", string(sess.Role))
	}
}
