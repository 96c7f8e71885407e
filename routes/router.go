package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walkitapp/walkit/config"
	"github.com/walkitapp/walkit/controllers"
	"github.com/walkitapp/walkit/middleware"
	"github.com/walkitapp/walkit/services"
	"github.com/walkitapp/walkit/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, auth *services.Auth, rewards *services.Rewards) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(auth)
	userController := controllers.NewUserController(db, rewards)
	leaderboardController := controllers.NewLeaderboardController(db)
	activityController := controllers.NewActivityController(rewards)
	missionController := controllers.NewMissionController(db)
	eventLogController := controllers.NewEventLogController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/sign-in", authController.SignIn)
	authGroup.POST("/sign-out", authController.SignOut)
	authGroup.POST("/token/refresh", authController.Refresh)

	// Public leaderboard, cached server side
	api.GET("/users", leaderboardController.ListUsers)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.GET("/users/me", userController.Me)
	protected.PATCH("/users/me", userController.UpdateMe)
	protected.GET("/activities", activityController.List)
	protected.POST("/activities", activityController.Create)
	protected.GET("/missions", missionController.ListMissions)
	protected.GET("/user-missions", missionController.ListUserMissions)
	protected.GET("/event-logs", eventLogController.List)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
