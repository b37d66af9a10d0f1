package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridehail/internal/auth"
)

// Context keys set by Authenticate.
const (
	ContextSubject = "subject"
	ContextRole    = "role"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// Authenticate validates the Bearer token and stores its subject and role in the context.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return authenticate(tokens, false)
}

// AuthenticateSocket is Authenticate for the websocket upgrade. Browsers
// cannot set headers on a websocket handshake, so the token may also come
// from the token query parameter. The identity is attached to the request
// context for handlers outside gin.
func AuthenticateSocket(tokens TokenParser) gin.HandlerFunc {
	return authenticate(tokens, true)
}

func authenticate(tokens TokenParser, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if (!ok || raw == "") && allowQuery {
			raw, ok = c.Query("token"), true
		}
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), auth.Identity{
			Subject: claims.Subject,
			Role:    claims.Role,
		}))
		c.Next()
	}
}

// RequireRole rejects callers whose token role is not one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[c.GetString(ContextRole)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
			return
		}
		c.Next()
	}
}

// Subject returns the authenticated rider or captain id.
func Subject(c *gin.Context) string {
	return c.GetString(ContextSubject)
}
