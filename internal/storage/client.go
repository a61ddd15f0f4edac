package storage

import (
	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/models"
)

func CreateClient(db *gormw.DB, client *models.Client) error {
	return db.Create(client).Error
}

func GetClientByID(db *gormw.DB, id uint) (*models.Client, error) {
	client := &models.Client{}
	if err := db.Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func ListClientsByCompany(db *gormw.DB, companyID uint) ([]models.Client, error) {
	var clients []models.Client
	if err := db.Where("company_id = ?", companyID).Order("name").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func SaveClient(db *gormw.DB, client *models.Client) error {
	return db.Save(client).Error
}

func DeleteClient(db *gormw.DB, id uint) error {
	return db.Delete(&models.Client{}, id).Error
}
