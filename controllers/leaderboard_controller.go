package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walkitapp/walkit/models"
	"github.com/walkitapp/walkit/utils"
)

// LeaderboardController serves public windowed rankings.
type LeaderboardController struct {
	db *gorm.DB
}

// NewLeaderboardController creates a new controller instance.
func NewLeaderboardController(db *gorm.DB) *LeaderboardController {
	return &LeaderboardController{db: db}
}

const leaderboardLimit = 100

var leaderboardWindows = map[string]time.Duration{
	"day":   24 * time.Hour,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"year":  52 * 7 * 24 * time.Hour,
}

type leaderboardRow struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Level      int    `json:"level"`
	TotalSteps int    `json:"total_steps"`
}

// ListUsers ranks users either by step totals over a time window
// (?leaderboard=day|week|month|year) or by level (?level=1). Results are
// capped and briefly cached.
func (l *LeaderboardController) ListUsers(ctx *gin.Context) {
	window := strings.TrimSpace(ctx.Query("leaderboard"))
	byLevel := strings.TrimSpace(ctx.Query("level")) != ""

	switch {
	case window != "":
		l.listByWindow(ctx, window)
	case byLevel:
		l.listByLevel(ctx)
	default:
		utils.Error(ctx, http.StatusBadRequest, 40040, "leaderboard or level query required")
	}
}

func (l *LeaderboardController) listByWindow(ctx *gin.Context, window string) {
	duration, ok := leaderboardWindows[window]
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "leaderboard must be one of day, week, month, year")
		return
	}

	cacheKey := "cache:leaderboard:" + window
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	cutoff := time.Now().Add(-duration)
	var rows []leaderboardRow
	err := l.db.Model(&models.DailyActivity{}).
		Select("daily_activities.user_id AS user_id, users.username AS username, users.level AS level, SUM(daily_activities.step_count) AS total_steps").
		Joins("JOIN users ON users.id = daily_activities.user_id").
		Where("daily_activities.source = ? AND daily_activities.timestamp >= ?", models.SourceSteps, cutoff).
		Group("daily_activities.user_id, users.username, users.level").
		Having("SUM(daily_activities.step_count) > 0").
		Order("total_steps DESC").
		Limit(leaderboardLimit).
		Scan(&rows).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to build leaderboard")
		return
	}
	if rows == nil {
		rows = []leaderboardRow{}
	}

	payload := gin.H{"window": window, "items": rows}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Minute)
	utils.Success(ctx, payload)
}

func (l *LeaderboardController) listByLevel(ctx *gin.Context) {
	cacheKey := "cache:leaderboard:level"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var users []models.User
	err := l.db.Order("level DESC, aura DESC").Limit(leaderboardLimit).Find(&users).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list users")
		return
	}

	items := make([]leaderboardRow, 0, len(users))
	for _, u := range users {
		items = append(items, leaderboardRow{UserID: u.ID, Username: u.Username, Level: u.Level})
	}

	payload := gin.H{"window": "level", "items": items}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Minute)
	utils.Success(ctx, payload)
}
