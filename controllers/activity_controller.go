package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/walkitapp/walkit/models"
	"github.com/walkitapp/walkit/services"
	"github.com/walkitapp/walkit/utils"
)

// ActivityController exposes the caller's reward ledger.
type ActivityController struct {
	rewards *services.Rewards
}

// NewActivityController creates a new controller instance.
func NewActivityController(rewards *services.Rewards) *ActivityController {
	return &ActivityController{rewards: rewards}
}

// List returns the caller's ledger entries, newest first.
func (a *ActivityController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit := 0
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := a.rewards.ListActivities(ctx.Request.Context(), userID, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list activities")
		return
	}
	utils.Success(ctx, gin.H{"items": entries})
}

type createActivityRequest struct {
	StepCount int `json:"step_count" binding:"required"`
}

// Create records a step report for the caller. Only step reports come in
// through the API; referral and bonus entries are written server side.
func (a *ActivityController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req createActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "step_count is required")
		return
	}

	entry, err := a.rewards.RecordActivity(ctx.Request.Context(), userID, req.StepCount, models.SourceSteps, nil)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", entry)
}
