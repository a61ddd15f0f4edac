package storage

import (
	"strings"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/models"
)

func GetUserByEmail(db *gormw.DB, email string) (*models.User, error) {
	user := &models.User{}
	if err := db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByID(db *gormw.DB, id uint) (*models.User, error) {
	user := &models.User{}
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByVerifyToken(db *gormw.DB, token string) (*models.User, error) {
	user := &models.User{}
	if err := db.Where("verify_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func CreateUser(db *gormw.DB, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return db.Create(user).Error
}

func SaveUser(db *gormw.DB, user *models.User) error {
	return db.Save(user).Error
}
