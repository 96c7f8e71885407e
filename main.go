package main

import (
	"github.com/walkitapp/walkit/config"
	"github.com/walkitapp/walkit/models"
	"github.com/walkitapp/walkit/routes"
	"github.com/walkitapp/walkit/services"
	"github.com/walkitapp/walkit/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.DailyActivity{},
		&models.Mission{},
		&models.UserMission{},
		&models.UserEventLog{},
	)

	var mirror services.StepMirror
	if m := services.NewMultiMirror(cfg.Chains); m != nil {
		mirror = m
	}

	rewards := services.NewRewards(db, cfg, mirror)
	verifier := services.NewGoogleVerifier(cfg.GoogleClientID)
	auth := services.NewAuth(db, cfg, verifier, rewards)

	r := routes.SetupRouter(db, auth, rewards)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
