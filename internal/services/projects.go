package services

import (
	"github.com/Sean-Pereira-945/TaskManager/db"
	"github.com/Sean-Pereira-945/TaskManager/internal/apperrors"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
	"gorm.io/gorm"
)

const defaultProjectName = "My Tasks"

// CreateProject inserts the project and its owner membership in one
// transaction. A project without an owning member is unreachable, so partial
// failure rolls both back.
func CreateProject(name, description string, ownerID uint) (*models.Project, error) {
	project := models.Project{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		membership := models.ProjectMembership{
			UserID:    ownerID,
			ProjectID: project.ID,
			Role:      models.RoleOwner,
		}

		return tx.Create(&membership).Error
	})

	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &project, nil
}

// ListProjects returns every project the user holds a membership in.
func ListProjects(userID uint) ([]models.Project, error) {
	if err := EnsureDefaultProject(userID); err != nil {
		return nil, err
	}

	memberProjects := db.DB.Model(&models.ProjectMembership{}).
		Select("project_id").
		Where("user_id = ?", userID)

	var projects []models.Project

	if err := db.DB.Where("id IN (?)", memberProjects).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	return projects, nil
}

// UpdateProject renames the project; owner only.
func UpdateProject(projectID uint, name, description string, userID uint) (*models.Project, error) {
	if _, err := RequireOwner(projectID, userID); err != nil {
		return nil, err
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	project.Name = name
	project.Description = description

	if err := db.DB.Save(&project).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	return &project, nil
}

// DeleteProject removes the project with its memberships and tasks; owner
// only.
func DeleteProject(projectID, userID uint) error {
	if _, err := RequireOwner(projectID, userID); err != nil {
		return err
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.ReminderLog{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, projectID).Error
	})

	if err != nil {
		return apperrors.Internal(err)
	}

	return nil
}

// EnsureDefaultProject lazily provisions a personal project for a user seen
// without any membership, adopting their legacy unattached tasks. Repeated
// calls are no-ops.
func EnsureDefaultProject(userID uint) error {
	var memberships int64

	err := db.DB.Model(&models.ProjectMembership{}).Where("user_id = ?", userID).Count(&memberships).Error

	if err != nil {
		return apperrors.Internal(err)
	}

	if memberships > 0 {
		return nil
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		project := models.Project{
			Name:        defaultProjectName,
			Description: "Personal project",
			OwnerID:     userID,
		}

		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		membership := models.ProjectMembership{
			UserID:    userID,
			ProjectID: project.ID,
			Role:      models.RoleOwner,
		}

		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		return tx.Model(&models.Task{}).
			Where("creator_id = ? AND project_id = 0", userID).
			Update("project_id", project.ID).Error
	})

	if err != nil {
		return apperrors.Internal(err)
	}

	return nil
}
