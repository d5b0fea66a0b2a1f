package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Sean-Pereira-945/TaskManager/internal/apperrors"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
	"github.com/Sean-Pereira-945/TaskManager/internal/services"
	"github.com/Sean-Pereira-945/TaskManager/internal/types"
	"github.com/Sean-Pereira-945/TaskManager/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ProjectID   uint       `json:"project_id" binding:"required"`
	AssigneeID  *uint      `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskProjectSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TaskResponse struct {
	ID             uint                `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         string              `json:"status"`
	Project        TaskProjectSummary  `json:"project"`
	CreatorID      uint                `json:"creator_id"`
	Assignee       *types.UserResponse `json:"assignee"`
	DueDate        *time.Time          `json:"due_date"`
	CompletedAt    *time.Time          `json:"completed_at"`
	ReminderSentAt *time.Time          `json:"reminder_sent_at"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func toTaskResponse(task models.Task) TaskResponse {
	response := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Project: TaskProjectSummary{
			ID:   task.ProjectID,
			Name: task.Project.Name,
		},
		CreatorID:      task.CreatorID,
		DueDate:        task.DueDate,
		CompletedAt:    task.CompletedAt,
		ReminderSentAt: task.ReminderSentAt,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}

	if task.Assignee != nil {
		response.Assignee = &types.UserResponse{
			ID:    task.Assignee.ID,
			Name:  task.Assignee.Name,
			Email: task.Assignee.Email,
		}
	}

	return response
}

func ListTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	filters := services.TaskFilters{
		Status: ctx.Query("status"),
		Search: ctx.Query("search"),
		Sort:   ctx.Query("sort"),
	}

	projectIDStr := ctx.Query("projectId")

	if projectIDStr == "" {
		projectIDStr = ctx.Query("project_id")
	}

	if projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 32)

		if err != nil {
			respondError(ctx, apperrors.Validation("Invalid project ID"))
			return
		}

		filters.ProjectID = uint(projectID)
	}

	tasks, err := services.ListTasks(userID, filters)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, toTaskResponse(task))
	}

	respondData(ctx, http.StatusOK, response)
}

func GetTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Validation(err.Error()))
		return
	}

	task, err := services.GetTask(taskID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, toTaskResponse(*task))
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var body CreateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondError(ctx, apperrors.Validation("Invalid request"))
		return
	}

	task, err := services.CreateTask(services.CreateTaskInput{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		ProjectID:   body.ProjectID,
		AssigneeID:  body.AssigneeID,
		DueDate:     body.DueDate,
	}, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, toTaskResponse(*task))
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Validation(err.Error()))
		return
	}

	var patch services.TaskPatch

	if err := ctx.ShouldBindJSON(&patch); err != nil {
		respondError(ctx, apperrors.Validation("Invalid request"))
		return
	}

	task, err := services.UpdateTask(taskID, patch, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, toTaskResponse(*task))
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Validation(err.Error()))
		return
	}

	if err := services.DeleteTask(taskID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
