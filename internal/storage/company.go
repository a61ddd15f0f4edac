package storage

import (
	"gorm.io/gorm"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/models"
)

func GetCompanyByID(db *gormw.DB, id uint) (*models.Company, error) {
	company := &models.Company{}
	if err := db.Where("id = ?", id).First(&company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// CreateCompanyWithOwner creates the company and its owner membership in one
// transaction, so a company can never exist without an owner.
func CreateCompanyWithOwner(db *gormw.DB, company *models.Company, ownerID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return err
		}
		return tx.Create(&models.Membership{
			UserID:    ownerID,
			CompanyID: company.ID,
			Role:      models.RoleOwner,
		}).Error
	})
}

func ListCompaniesForUser(db *gormw.DB, userID uint) ([]models.Company, error) {
	var companies []models.Company
	err := db.
		Joins("JOIN memberships ON memberships.company_id = companies.id").
		Where("memberships.user_id = ?", userID).
		Order("companies.created_at").
		Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}
