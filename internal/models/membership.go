package models

import (
	"time"

	"github.com/hashicorp/go-set/v3"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

var (
	validRoles         = set.From([]Role{RoleOwner, RoleAdmin, RoleMember})
	inviteCapableRoles = set.From([]Role{RoleOwner, RoleAdmin})
)

func (r Role) Valid() bool {
	return validRoles.Contains(r)
}

// CanInvite reports whether the role may issue, resend or cancel
// invitations for its company.
func (r Role) CanInvite() bool {
	return inviteCapableRoles.Contains(r)
}

// Membership binds a user to a company. The composite unique index makes a
// concurrent double-accept of the same invitation fail on insert instead of
// producing two rows.
type Membership struct {
	ID        uint `gorm:"primarykey"`
	UserID    uint `gorm:"uniqueIndex:idx_membership_user_company"`
	CompanyID uint `gorm:"uniqueIndex:idx_membership_user_company"`
	Role      Role
	CreatedAt time.Time
}
