package storage

import (
	"strings"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/models"
)

func CreateInvitation(db *gormw.DB, invitation *models.Invitation) error {
	invitation.Email = strings.ToLower(invitation.Email)
	return db.Create(invitation).Error
}

func GetInvitationByID(db *gormw.DB, id uint) (*models.Invitation, error) {
	res := &models.Invitation{}
	if err := db.Where("id = ?", id).First(res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func GetInvitationByToken(db *gormw.DB, token string) (*models.Invitation, error) {
	res := &models.Invitation{}
	if err := db.Where("token = ?", token).First(res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func GetPendingInvitation(db *gormw.DB, email string, companyID uint) (*models.Invitation, error) {
	res := &models.Invitation{}
	err := db.
		Where("email = ? AND company_id = ? AND status = ?",
			strings.ToLower(email), companyID, models.InvitationPending).
		First(res).Error
	if err != nil {
		return nil, err
	}
	return res, nil
}

func UpdateInvitation(db *gormw.DB, invitation *models.Invitation) error {
	return db.Save(invitation).Error
}

func ListInvitationsByCompany(db *gormw.DB, companyID uint) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := db.Where("company_id = ?", companyID).Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}
