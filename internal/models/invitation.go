package models

import "time"

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationCancelled InvitationStatus = "cancelled"
	InvitationExpired   InvitationStatus = "expired"
)

// Invitation is a permanent audit record of an invite attempt. Rows are
// never deleted; they only move through the status machine. The partial
// unique index allows at most one pending invitation per (email, company)
// while keeping the full history of accepted/cancelled/expired ones.
type Invitation struct {
	ID         uint   `gorm:"primarykey"`
	Email      string `gorm:"index:idx_pending_invitation,unique,where:status = 'pending'"`
	CompanyID  uint   `gorm:"index:idx_pending_invitation,unique,where:status = 'pending'"`
	InvitedBy  uint
	Token      string `gorm:"uniqueIndex"`
	Status     InvitationStatus
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	AcceptedAt *time.Time
}

// ExpiredBy reports whether the invitation's window has closed at the given
// time. Expiry is detected lazily on accept, not swept by a background job.
func (i *Invitation) ExpiredBy(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}
