package storage

import (
	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/models"
)

func CreateProject(db *gormw.DB, project *models.Project) error {
	return db.Create(project).Error
}

func GetProjectByID(db *gormw.DB, id uint) (*models.Project, error) {
	project := &models.Project{}
	if err := db.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjectsByCompany returns the company's board, column by column.
func ListProjectsByCompany(db *gormw.DB, companyID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := db.Where("company_id = ?", companyID).Order("status, position").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func SaveProject(db *gormw.DB, project *models.Project) error {
	return db.Save(project).Error
}

func DeleteProject(db *gormw.DB, id uint) error {
	return db.Delete(&models.Project{}, id).Error
}
