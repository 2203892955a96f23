package middleware

import (
	"net/http"
	"strings"

	"premier-open-group/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the cookie the portal pages read the access token from
// when no Authorization header is sent.
const AccessTokenCookie = "access_token"

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the access token cookie. ok is false when the header is
// present but malformed.
func TokenFromRequest(c *gin.Context) (token string, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	cookie, err := c.Cookie(AccessTokenCookie)
	if err != nil || cookie == "" {
		return "", true
	}
	return cookie, true
}

func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := TokenFromRequest(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}

// OptionalAuth sets user_id when a valid token is present and never aborts.
func OptionalAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := TokenFromRequest(c); ok && token != "" {
			if claims, err := jwtService.ValidateToken(token); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("user_email", claims.Email)
			}
		}
		c.Next()
	}
}
