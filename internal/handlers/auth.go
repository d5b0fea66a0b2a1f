package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Sean-Pereira-945/TaskManager/db"
	"github.com/Sean-Pereira-945/TaskManager/internal/apperrors"
	"github.com/Sean-Pereira-945/TaskManager/internal/auth"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
	"github.com/Sean-Pereira-945/TaskManager/internal/types"
	"github.com/Sean-Pereira-945/TaskManager/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	User  types.UserResponse `json:"user"`
	Token string             `json:"token"`
}

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, apperrors.Validation("Invalid request"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User

	err := db.DB.Where("email = ?", req.Email).First(&existing).Error

	if err == nil {
		respondError(ctx, apperrors.Conflict("Email already exists"))
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(ctx, apperrors.Internal(err))
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		respondError(ctx, apperrors.Internal(err))
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
	}

	if err := db.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(ctx, apperrors.Conflict("Email already exists"))
			return
		}
		respondError(ctx, apperrors.Internal(err))
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		respondError(ctx, apperrors.Internal(err))
		return
	}

	respondData(ctx, http.StatusCreated, SessionResponse{
		User:  types.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
		Token: token,
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, apperrors.Validation("Invalid request"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User

	err := db.DB.Where("email = ?", req.Email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, apperrors.Unauthorized("Invalid email or password"))
			return
		}
		respondError(ctx, apperrors.Internal(err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(ctx, apperrors.Unauthorized("Invalid email or password"))
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		respondError(ctx, apperrors.Internal(err))
		return
	}

	respondData(ctx, http.StatusOK, SessionResponse{
		User:  types.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
		Token: token,
	})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	respondData(ctx, http.StatusOK, types.UserResponse{
		ID:    currentUser.ID,
		Name:  currentUser.Name,
		Email: currentUser.Email,
	})
}
