package services

import (
	"errors"
	"strings"
	"time"

	"github.com/Sean-Pereira-945/TaskManager/db"
	"github.com/Sean-Pereira-945/TaskManager/internal/apperrors"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
	"github.com/Sean-Pereira-945/TaskManager/internal/types"
	"gorm.io/gorm"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortTitle  = "title"
)

type TaskFilters struct {
	Status    string
	Search    string
	Sort      string
	ProjectID uint // zero means no project filter
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	ProjectID   uint
	AssigneeID  *uint
	DueDate     *time.Time
}

// TaskPatch carries partial-update semantics: absent fields are untouched, an
// explicit null clears nullable fields.
type TaskPatch struct {
	Title       types.Optional[string]    `json:"title"`
	Description types.Optional[string]    `json:"description"`
	Status      types.Optional[string]    `json:"status"`
	ProjectID   types.Optional[uint]      `json:"project_id"`
	AssigneeID  types.Optional[uint]      `json:"assignee_id"`
	DueDate     types.Optional[time.Time] `json:"due_date"`
}

func (p TaskPatch) empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set &&
		!p.ProjectID.Set && !p.AssigneeID.Set && !p.DueDate.Set
}

// ListTasks returns tasks visible to the user: tasks they created, tasks
// assigned to them, and tasks in projects they belong to.
func ListTasks(userID uint, filters TaskFilters) ([]models.Task, error) {
	if err := EnsureDefaultProject(userID); err != nil {
		return nil, err
	}

	memberProjects := db.DB.Model(&models.ProjectMembership{}).
		Select("project_id").
		Where("user_id = ?", userID)

	query := db.DB.Model(&models.Task{}).
		Preload("Project").
		Preload("Assignee").
		Where("creator_id = ? OR assignee_id = ? OR project_id IN (?)", userID, userID, memberProjects)

	if filters.ProjectID != 0 {
		if _, err := RequireMember(filters.ProjectID, userID); err != nil {
			return nil, err
		}
		query = query.Where("project_id = ?", filters.ProjectID)
	}

	if filters.Status != "" {
		if !models.ValidTaskStatus(filters.Status) {
			return nil, apperrors.Validation("Invalid status filter", apperrors.Issue{Field: "status", Message: "must be TODO, IN_PROGRESS or DONE"})
		}
		query = query.Where("status = ?", filters.Status)
	}

	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	switch filters.Sort {
	case SortNewest, "":
		query = query.Order("created_at DESC")
	case SortOldest:
		query = query.Order("created_at ASC")
	case SortTitle:
		query = query.Order("title ASC")
	default:
		return nil, apperrors.Validation("Invalid sort", apperrors.Issue{Field: "sort", Message: "must be newest, oldest or title"})
	}

	var tasks []models.Task

	if err := query.Find(&tasks).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	return tasks, nil
}

// GetTask loads one visible task. A task that exists but is not visible to
// the caller reports NotFound, indistinguishable from absence.
func GetTask(taskID, userID uint) (*models.Task, error) {
	var task models.Task

	err := db.DB.Preload("Project").Preload("Assignee").First(&task, taskID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Task not found")
	}

	if err != nil {
		return nil, apperrors.Internal(err)
	}

	visible, err := taskVisible(&task, userID)

	if err != nil {
		return nil, err
	}

	if !visible {
		return nil, apperrors.NotFound("Task not found")
	}

	return &task, nil
}

func taskVisible(task *models.Task, userID uint) (bool, error) {
	if task.CreatorID == userID {
		return true, nil
	}

	if task.AssigneeID != nil && *task.AssigneeID == userID {
		return true, nil
	}

	membership, err := Membership(task.ProjectID, userID)

	if err != nil {
		return false, err
	}

	return membership != nil, nil
}

// CreateTask creates a task in a project the caller belongs to.
func CreateTask(input CreateTaskInput, userID uint) (*models.Task, error) {
	if _, err := RequireMember(input.ProjectID, userID); err != nil {
		return nil, err
	}

	status := input.Status

	if status == "" {
		status = models.TaskStatusTodo
	}

	if !models.ValidTaskStatus(status) {
		return nil, apperrors.Validation("Invalid status", apperrors.Issue{Field: "status", Message: "must be TODO, IN_PROGRESS or DONE"})
	}

	if input.AssigneeID != nil {
		assignee, err := Membership(input.ProjectID, *input.AssigneeID)

		if err != nil {
			return nil, err
		}

		if assignee == nil {
			return nil, apperrors.Validation("Assignee must be a member of the project", apperrors.Issue{Field: "assignee_id", Message: "not a project member"})
		}
	}

	task := models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      status,
		ProjectID:   input.ProjectID,
		CreatorID:   userID,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
	}

	if task.Title == "" {
		return nil, apperrors.Validation("Title is required", apperrors.Issue{Field: "title", Message: "must not be empty"})
	}

	if status == models.TaskStatusDone {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := db.DB.Create(&task).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	// Reread with relations; a concurrent delete between the write and this
	// read surfaces as NotFound, not as an internal failure.
	return GetTask(task.ID, userID)
}

// UpdateTask applies a partial patch. Visibility alone is enough to read a
// task, but mutation requires membership in its project; completing a task
// requires the owner role.
func UpdateTask(taskID uint, patch TaskPatch, userID uint) (*models.Task, error) {
	task, err := GetTask(taskID, userID)

	if err != nil {
		return nil, err
	}

	membership, err := Membership(task.ProjectID, userID)

	if err != nil {
		return nil, err
	}

	if membership == nil {
		return nil, apperrors.Forbidden("You are not a member of this project")
	}

	if patch.empty() {
		return nil, apperrors.Validation("No fields to update")
	}

	if patch.ProjectID.Set {
		if patch.ProjectID.Value == nil {
			return nil, apperrors.Validation("Project is required", apperrors.Issue{Field: "project_id", Message: "must not be null"})
		}
		if *patch.ProjectID.Value != task.ProjectID {
			return nil, apperrors.Validation("Moving a task to another project is not supported", apperrors.Issue{Field: "project_id", Message: "not supported"})
		}
	}

	updates := make(map[string]interface{})
	clearReminder := false

	if patch.Title.Set {
		if patch.Title.Value == nil || strings.TrimSpace(*patch.Title.Value) == "" {
			return nil, apperrors.Validation("Title is required", apperrors.Issue{Field: "title", Message: "must not be empty"})
		}
		updates["title"] = strings.TrimSpace(*patch.Title.Value)
	}

	if patch.Description.Set {
		if patch.Description.Value == nil {
			updates["description"] = ""
		} else {
			updates["description"] = *patch.Description.Value
		}
	}

	if patch.Status.Set {
		if patch.Status.Value == nil {
			return nil, apperrors.Validation("Status is required", apperrors.Issue{Field: "status", Message: "must not be null"})
		}

		newStatus := *patch.Status.Value

		if !models.ValidTaskStatus(newStatus) {
			return nil, apperrors.Validation("Invalid status", apperrors.Issue{Field: "status", Message: "must be TODO, IN_PROGRESS or DONE"})
		}

		if newStatus != task.Status {
			if newStatus == models.TaskStatusDone {
				if membership.Role != models.RoleOwner {
					return nil, apperrors.Forbidden("Only the project owner can complete tasks")
				}
				updates["completed_at"] = time.Now()
			} else if task.Status == models.TaskStatusDone {
				updates["completed_at"] = nil
			}
			updates["status"] = newStatus
		}
	}

	if patch.AssigneeID.Set {
		if patch.AssigneeID.Value == nil {
			if task.AssigneeID != nil {
				updates["assignee_id"] = nil
				clearReminder = true
			}
		} else {
			newAssignee := *patch.AssigneeID.Value

			assignee, err := Membership(task.ProjectID, newAssignee)

			if err != nil {
				return nil, err
			}

			if assignee == nil {
				return nil, apperrors.Validation("Assignee must be a member of the project", apperrors.Issue{Field: "assignee_id", Message: "not a project member"})
			}

			if task.AssigneeID == nil || *task.AssigneeID != newAssignee {
				updates["assignee_id"] = newAssignee
				clearReminder = true
			}
		}
	}

	if patch.DueDate.Set {
		if patch.DueDate.Value == nil {
			if task.DueDate != nil {
				updates["due_date"] = nil
				clearReminder = true
			}
		} else if task.DueDate == nil || !task.DueDate.Equal(*patch.DueDate.Value) {
			updates["due_date"] = *patch.DueDate.Value
			clearReminder = true
		}
	}

	// A changed schedule or assignee makes the task eligible for a fresh
	// reminder.
	if clearReminder {
		updates["reminder_sent_at"] = nil
	}

	if len(updates) > 0 {
		if err := db.DB.Model(task).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	return GetTask(taskID, userID)
}

// DeleteTask removes a visible task. Any user with visibility-level access
// may delete; there is deliberately no role gate here.
func DeleteTask(taskID, userID uint) error {
	task, err := GetTask(taskID, userID)

	if err != nil {
		return err
	}

	if err := db.DB.Delete(task).Error; err != nil {
		return apperrors.Internal(err)
	}

	return nil
}
