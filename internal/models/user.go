package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name           string
	Email          string `gorm:"uniqueIndex"`
	HashedPassword string
	Picture        string

	// Email verification state. The invitation accept path requires a
	// verified email before a membership is granted.
	EmailVerified        bool
	VerifyToken          string `gorm:"index"`
	VerifyTokenExpiresAt *time.Time
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) == nil
}

func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.HashedPassword = string(hashed)
	return nil
}
