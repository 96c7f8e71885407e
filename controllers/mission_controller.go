package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walkitapp/walkit/models"
	"github.com/walkitapp/walkit/utils"
)

// MissionController lists the mission catalog and per-user progress.
type MissionController struct {
	db *gorm.DB
}

// NewMissionController creates a new controller instance.
func NewMissionController(db *gorm.DB) *MissionController {
	return &MissionController{db: db}
}

// ListMissions returns the shared mission catalog.
func (m *MissionController) ListMissions(ctx *gin.Context) {
	var missions []models.Mission
	if err := m.db.Order("requirement_steps ASC").Find(&missions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list missions")
		return
	}
	utils.Success(ctx, gin.H{"items": missions})
}

// ListUserMissions returns the caller's progress rows with missions embedded.
func (m *MissionController) ListUserMissions(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var userMissions []models.UserMission
	err := m.db.Preload("Mission").
		Joins("JOIN missions ON missions.id = user_missions.mission_id").
		Where("user_missions.user_id = ?", userID).
		Order("missions.requirement_steps ASC").
		Find(&userMissions).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list user missions")
		return
	}
	utils.Success(ctx, gin.H{"items": userMissions})
}
