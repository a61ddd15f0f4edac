package models

import "time"

// Client is a CRM record owned by a company.
type Client struct {
	ID        uint `gorm:"primarykey"`
	CompanyID uint `gorm:"index"`
	Name      string
	Email     string
	Phone     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
