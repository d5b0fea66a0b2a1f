package handlers

import (
	"net/http"

	"github.com/Sean-Pereira-945/TaskManager/internal/apperrors"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
	"github.com/Sean-Pereira-945/TaskManager/internal/services"
	"github.com/Sean-Pereira-945/TaskManager/internal/utils"
	"github.com/gin-gonic/gin"
)

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type MemberResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toMemberResponse(membership models.ProjectMembership) MemberResponse {
	return MemberResponse{
		ID:    membership.UserID,
		Name:  membership.User.Name,
		Email: membership.User.Email,
		Role:  membership.Role,
	}
}

func ListMembers(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Validation(err.Error()))
		return
	}

	memberships, err := services.ListMembers(projectID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]MemberResponse, 0, len(memberships))

	for _, membership := range memberships {
		response = append(response, toMemberResponse(membership))
	}

	respondData(ctx, http.StatusOK, response)
}

func AddMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Validation(err.Error()))
		return
	}

	var body AddMemberRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondError(ctx, apperrors.Validation("A valid email is required"))
		return
	}

	membership, err := services.AddMember(projectID, body.Email, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, toMemberResponse(*membership))
}

func RemoveMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Validation(err.Error()))
		return
	}

	memberID, err := utils.GetMemberID(ctx)

	if err != nil {
		respondError(ctx, apperrors.Validation(err.Error()))
		return
	}

	if err := services.RemoveMember(projectID, memberID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
