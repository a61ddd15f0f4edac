package storage

import (
	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/models"
)

func GetMembership(db *gormw.DB, userID, companyID uint) (*models.Membership, error) {
	m := &models.Membership{}
	if err := db.Where("user_id = ? AND company_id = ?", userID, companyID).First(&m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func ListMembershipsByCompany(db *gormw.DB, companyID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	if err := db.Where("company_id = ?", companyID).Order("created_at").Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func CreateMembership(db *gormw.DB, m *models.Membership) error {
	return db.Create(m).Error
}

func UpdateMembershipRole(db *gormw.DB, m *models.Membership, role models.Role) error {
	return db.Model(m).Update("role", role).Error
}
