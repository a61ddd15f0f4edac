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

func newPending(email string, companyID uint, token string) *models.Invitation {
	return &models.Invitation{
		Email:     email,
		CompanyID: companyID,
		InvitedBy: 1,
		Token:     token,
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func TestCreateInvitation_LowercasesEmail(t *testing.T) {
	db := setupDB(t)

	inv := newPending("Bob@Example.COM", 1, "tok-1")
	require.NoError(t, CreateInvitation(db, inv))

	got, err := GetPendingInvitation(db, "bob@example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.Email)
}

// The partial unique index allows any number of closed rows per
// (email, company) but at most one pending row.
func TestPendingInvitationUniqueness(t *testing.T) {
	db := setupDB(t)

	cancelled := newPending("bob@example.com", 1, "tok-old")
	cancelled.Status = models.InvitationCancelled
	require.NoError(t, CreateInvitation(db, cancelled))

	expired := newPending("bob@example.com", 1, "tok-older")
	expired.Status = models.InvitationExpired
	require.NoError(t, CreateInvitation(db, expired))

	require.NoError(t, CreateInvitation(db, newPending("bob@example.com", 1, "tok-new")))

	err := CreateInvitation(db, newPending("bob@example.com", 1, "tok-dup"))
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// Same email, different company is fine.
	require.NoError(t, CreateInvitation(db, newPending("bob@example.com", 2, "tok-other")))
}

func TestGetInvitationByToken(t *testing.T) {
	db := setupDB(t)

	inv := newPending("bob@example.com", 1, "tok-1")
	require.NoError(t, CreateInvitation(db, inv))

	got, err := GetInvitationByToken(db, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)

	_, err = GetInvitationByToken(db, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUpdateInvitation(t *testing.T) {
	db := setupDB(t)

	inv := newPending("bob@example.com", 1, "tok-1")
	require.NoError(t, CreateInvitation(db, inv))

	inv.Status = models.InvitationCancelled
	require.NoError(t, UpdateInvitation(db, inv))

	got, err := GetInvitationByID(db, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationCancelled, got.Status)

	_, err = GetPendingInvitation(db, "bob@example.com", 1)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListInvitationsByCompany(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, CreateInvitation(db, newPending("a@example.com", 1, "tok-a")))
	require.NoError(t, CreateInvitation(db, newPending("b@example.com", 1, "tok-b")))
	require.NoError(t, CreateInvitation(db, newPending("c@example.com", 2, "tok-c")))

	list, err := ListInvitationsByCompany(db, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestExpiredBy(t *testing.T) {
	now := time.Now()
	inv := &models.Invitation{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, inv.ExpiredBy(now))
	assert.True(t, inv.ExpiredBy(now.Add(2*time.Hour)))
}
