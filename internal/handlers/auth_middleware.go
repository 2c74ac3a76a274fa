package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shikhoron/qna-service/internal/auth"
)

// SessionCookieName is the cookie carrying the session token. Clients may
// alternatively send the token as a Bearer authorization header.
const SessionCookieName = "qna_session"

const (
	contextKeyActor        = "actor"
	contextKeySessionToken = "session_token"
)

// SessionAuthMiddleware resolves session tokens to an AuthContext
type SessionAuthMiddleware struct {
	sessions *auth.SessionStore
}

func NewSessionAuthMiddleware(sessions *auth.SessionStore) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{sessions: sessions}
}

// Middleware resolves the request's identity. Unknown or absent tokens
// leave the request anonymous; role gates decide later whether that is
// acceptable for the route.
func (m *SessionAuthMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			actor, err := m.sessions.Get(c.Request.Context(), token)
			if err == nil {
				c.Set(contextKeyActor, actor)
				c.Set(contextKeySessionToken, token)
			}
		}
		c.Next()
	}
}

// RequireAuth aborts anonymous requests with 401
func (m *SessionAuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFromContext(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authentication required",
			})
			return
		}
		c.Next()
	}
}

// RequireModerator gates the moderator namespace
func (m *SessionAuthMiddleware) RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, reason := auth.CanModerate(ActorFromContext(c)); !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Permission denied",
				Details: reason,
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin gates the admin namespace
func (m *SessionAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, reason := auth.CanAdminister(ActorFromContext(c)); !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Permission denied",
				Details: reason,
			})
			return
		}
		c.Next()
	}
}

// ActorFromContext returns the resolved identity, or Anonymous
func ActorFromContext(c *gin.Context) auth.AuthContext {
	if v, exists := c.Get(contextKeyActor); exists {
		if actor, ok := v.(auth.AuthContext); ok {
			return actor
		}
	}
	return auth.Anonymous
}

// TokenFromContext returns the session token behind the current request
func TokenFromContext(c *gin.Context) string {
	return c.GetString(contextKeySessionToken)
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
