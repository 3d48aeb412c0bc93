package security

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
)

// SessionContextKey is the gin context key holding the caller's session id
const SessionContextKey = "session_id"

// SessionValidator resolves a bearer token to a session id
type SessionValidator interface {
	ValidateSessionToken(token string) (string, error)
}

// SessionID returns the session attached by SessionAuth, or ""
func SessionID(c *gin.Context) string {
	return c.GetString(SessionContextKey)
}

// SessionAuth attaches the session id when the request carries a valid
// bearer token. Requests without a token continue anonymously; a token that
// fails validation is rejected.
func (sm *SecurityMiddleware) SessionAuth(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok || sm.sessions == nil {
		c.Next()
		return
	}

	sessionID, err := sm.sessions.ValidateSessionToken(token)
	if err != nil {
		apperrors.Respond(c, apperrors.NewUnauthorizedError("invalid or expired session token", err))
		return
	}

	c.Set(SessionContextKey, sessionID)
	c.Next()
}

// RequireSession rejects requests SessionAuth did not attach a session to
func RequireSession(c *gin.Context) {
	if SessionID(c) == "" {
		apperrors.Respond(c, apperrors.NewUnauthorizedError("a session token is required", nil))
		return
	}
	c.Next()
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
