package models

import "time"

// Session is a browser login session. The token travels in an HTTP-only
// cookie; expired rows are cleaned up by a daily job.
type Session struct {
	ID        uint   `gorm:"primarykey"`
	Token     string `gorm:"uniqueIndex"`
	UserID    uint   `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}
