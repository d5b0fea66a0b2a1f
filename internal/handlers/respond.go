package handlers

import (
	"log"

	"github.com/Sean-Pereira-945/TaskManager/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondData envelopes a successful payload as {"data": ...}.
func respondData(ctx *gin.Context, status int, payload interface{}) {
	ctx.JSON(status, gin.H{"data": payload})
}

// respondError maps a taxonomy error onto its status and the
// {"message", "issues"?} shape. Internal causes are logged, never surfaced.
func respondError(ctx *gin.Context, err error) {
	appErr := apperrors.From(err)

	if appErr.Kind == apperrors.KindInternal && appErr.Err != nil {
		log.Printf("%s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, appErr.Err)
	}

	body := gin.H{"message": appErr.Message}

	if len(appErr.Issues) > 0 {
		body["issues"] = appErr.Issues
	}

	ctx.JSON(apperrors.StatusCode(appErr), body)
}
