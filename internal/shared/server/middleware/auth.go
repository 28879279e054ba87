package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/settham78ths/V2/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	usernameKey  = "username"
	sessionIDKey = "sessionId"
)

// Identity carries the caller identity resolved from request headers.
// Authentication itself happens upstream; this service trusts the
// forwarded headers the same way it trusts the reverse proxy.
type Identity struct {
	UserID    string
	Username  string
	SessionID string
	Guest     bool
}

// Auth resolves caller identity from forwarded headers. A session ID is
// always required because generation history and payment flags are
// session scoped. A user ID is optional; without it the caller is a
// guest identified by the session alone.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader("X-Session-Id"))
		if sessionID == "" {
			respond.Error(c, http.StatusUnauthorized, "session_required", "X-Session-Id header is required", nil)
			return
		}

		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		username := strings.TrimSpace(c.GetHeader("X-Username"))

		c.Set(sessionIDKey, sessionID)
		if userID != "" {
			c.Set(userIDKey, userID)
		}
		if username != "" {
			c.Set(usernameKey, username)
		}
		c.Next()
	}
}

// IdentityFromContext returns the identity stored by Auth middleware.
func IdentityFromContext(c *gin.Context) Identity {
	id := Identity{
		UserID:    c.GetString(userIDKey),
		Username:  c.GetString(usernameKey),
		SessionID: c.GetString(sessionIDKey),
	}
	id.Guest = id.UserID == ""
	return id
}

// PrincipalFromContext returns a stable key for rate limiting: the user
// ID when authenticated, otherwise the session ID.
func PrincipalFromContext(c *gin.Context) string {
	if userID := c.GetString(userIDKey); userID != "" {
		return "user:" + userID
	}
	if sessionID := c.GetString(sessionIDKey); sessionID != "" {
		return "session:" + sessionID
	}
	return "ip:" + c.ClientIP()
}
