package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walkitapp/walkit/models"
	"github.com/walkitapp/walkit/utils"
)

// EventLogController reads back the caller's audit trail.
type EventLogController struct {
	db *gorm.DB
}

// NewEventLogController creates a new controller instance.
func NewEventLogController(db *gorm.DB) *EventLogController {
	return &EventLogController{db: db}
}

// List returns the caller's events, newest first, optionally filtered by type.
func (e *EventLogController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit := 50
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	query := e.db.Where("user_id = ?", userID)
	if eventType := ctx.Query("type"); eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	var logs []models.UserEventLog
	if err := query.Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to list events")
		return
	}
	utils.Success(ctx, gin.H{"items": logs})
}
