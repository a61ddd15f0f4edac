package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/teamspace-app/teamspace/internal/models"
)

func TestSessionLifecycle(t *testing.T) {
	db := setupDB(t)

	session := &models.Session{
		UserID:    1,
		Token:     "session-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, CreateSession(db, session))

	got, err := GetSessionByToken(db, "session-token")
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.UserID)

	require.NoError(t, DeleteSessionByToken(db, "session-token"))

	_, err = GetSessionByToken(db, "session-token")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteExpiredSessions(t *testing.T) {
	db := setupDB(t)

	now := time.Now()
	require.NoError(t, CreateSession(db, &models.Session{
		UserID: 1, Token: "live", ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, CreateSession(db, &models.Session{
		UserID: 1, Token: "dead", ExpiresAt: now.Add(-time.Hour),
	}))

	require.NoError(t, DeleteExpiredSessions(db, now))

	_, err := GetSessionByToken(db, "live")
	assert.NoError(t, err)
	_, err = GetSessionByToken(db, "dead")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
