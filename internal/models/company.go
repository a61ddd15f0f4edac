package models

import "gorm.io/gorm"

// Company is a workspace. Clients, projects and invitations all hang off a
// company; users are bound to it through Membership rows.
type Company struct {
	gorm.Model
	Name      string
	CreatedBy uint
}
