// Package middleware holds the session-cookie authentication for all
// handler groups.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/models"
	"github.com/teamspace-app/teamspace/internal/storage"
)

const (
	// SessionCookie is the name of the HTTP-only login cookie.
	SessionCookie = "teamspace_session"

	userKey = "currentUser"
)

type SessionAuth struct {
	db    *gormw.DB
	clock clockwork.Clock
}

func NewSessionAuth(db *gormw.DB) *SessionAuth {
	return &SessionAuth{
		db:    db,
		clock: clockwork.NewRealClock(),
	}
}

// RequireUser rejects requests without a valid, unexpired session.
func (s *SessionAuth) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.lookup(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth_required"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// OptionalUser attaches the user when a valid session exists but lets the
// request through either way. The invitation accept route uses it so the
// lifecycle can tell "sign in first" apart from "register first".
func (s *SessionAuth) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := s.lookup(c); ok {
			c.Set(userKey, user)
		}
		c.Next()
	}
}

func (s *SessionAuth) lookup(c *gin.Context) (*models.User, bool) {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		return nil, false
	}

	session, err := storage.GetSessionByToken(s.db, token)
	if err != nil {
		return nil, false
	}
	if !session.ExpiresAt.After(s.clock.Now()) {
		return nil, false
	}

	user, err := storage.GetUserByID(s.db, session.UserID)
	if err != nil {
		return nil, false
	}
	return user, true
}

// CurrentUser returns the user attached by RequireUser/OptionalUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
