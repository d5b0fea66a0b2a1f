package services

import (
	"errors"
	"strings"

	"github.com/Sean-Pereira-945/TaskManager/db"
	"github.com/Sean-Pereira-945/TaskManager/internal/apperrors"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
	"gorm.io/gorm"
)

// Membership returns the user's membership row in the project, or nil when
// they hold none.
func Membership(projectID, userID uint) (*models.ProjectMembership, error) {
	var membership models.ProjectMembership

	err := db.DB.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &membership, nil
}

// RequireMember fails with NotFound when the project does not exist and
// Forbidden when the caller holds no membership in it.
func RequireMember(projectID, userID uint) (*models.ProjectMembership, error) {
	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Project not found")
		}
		return nil, apperrors.Internal(err)
	}

	membership, err := Membership(projectID, userID)

	if err != nil {
		return nil, err
	}

	if membership == nil {
		return nil, apperrors.Forbidden("You are not a member of this project")
	}

	return membership, nil
}

// RequireOwner additionally fails with Forbidden when the caller's role is
// not owner.
func RequireOwner(projectID, userID uint) (*models.ProjectMembership, error) {
	membership, err := RequireMember(projectID, userID)

	if err != nil {
		return nil, err
	}

	if membership.Role != models.RoleOwner {
		return nil, apperrors.Forbidden("Only the project owner can do this")
	}

	return membership, nil
}

// ListMembers returns the project's membership rows with their users loaded.
func ListMembers(projectID, callerID uint) ([]models.ProjectMembership, error) {
	if _, err := RequireMember(projectID, callerID); err != nil {
		return nil, err
	}

	var memberships []models.ProjectMembership

	if err := db.DB.Preload("User").Where("project_id = ?", projectID).Order("created_at ASC").Find(&memberships).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	return memberships, nil
}

// AddMember invites an existing account into the project as a member. Only
// the owner may invite; the target is looked up by email.
func AddMember(projectID uint, email string, callerID uint) (*models.ProjectMembership, error) {
	if _, err := RequireOwner(projectID, callerID); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var target models.User

	if err := db.DB.Where("email = ?", email).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("No account with that email")
		}
		return nil, apperrors.Internal(err)
	}

	if target.ID == callerID {
		return nil, apperrors.Validation("You are already a member of this project")
	}

	existing, err := Membership(projectID, target.ID)

	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, apperrors.Conflict("User is already a member of this project")
	}

	membership := models.ProjectMembership{
		UserID:    target.ID,
		ProjectID: projectID,
		Role:      models.RoleMember,
	}

	if err := db.DB.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("User is already a member of this project")
		}
		return nil, apperrors.Internal(err)
	}

	membership.User = target
	return &membership, nil
}

// RemoveMember drops a member from the project. Owners cannot remove
// themselves, and a member still holding open assignments must be reassigned
// first.
func RemoveMember(projectID, memberID, callerID uint) error {
	if _, err := RequireOwner(projectID, callerID); err != nil {
		return err
	}

	if memberID == callerID {
		return apperrors.Validation("You cannot remove yourself from the project")
	}

	membership, err := Membership(projectID, memberID)

	if err != nil {
		return err
	}

	if membership == nil {
		return apperrors.NotFound("Member not found")
	}

	var openTasks int64

	err = db.DB.Model(&models.Task{}).
		Where("project_id = ? AND assignee_id = ? AND status <> ?", projectID, memberID, models.TaskStatusDone).
		Count(&openTasks).Error

	if err != nil {
		return apperrors.Internal(err)
	}

	if openTasks > 0 {
		return apperrors.Conflict("Member still has open tasks assigned; reassign them first")
	}

	// Hard delete so the (user, project) unique index does not block a
	// future re-invite.
	if err := db.DB.Unscoped().Delete(membership).Error; err != nil {
		return apperrors.Internal(err)
	}

	return nil
}
