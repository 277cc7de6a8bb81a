package main

import (
	"log"

	"github.com/rafiakbrr/scrimhub/config"
	_ "github.com/rafiakbrr/scrimhub/docs"
	"github.com/rafiakbrr/scrimhub/internal/player"
	"github.com/rafiakbrr/scrimhub/internal/scrim"
	"github.com/rafiakbrr/scrimhub/internal/team"
	"github.com/rafiakbrr/scrimhub/routes"
)

// @title ScrimHub REST API
// @version 1.0
// @description Team rosters, join applications and scrim scheduling for MLBB squads.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&player.Player{},
		&team.Team{}, &team.TeamMember{}, &team.Application{},
		&scrim.ScrimSettings{}, &scrim.AvailabilityWindow{}, &scrim.ScrimRequest{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r := routes.SetupRoutes(config.DB, cfg.JWT.AccessTokenSecret)

	// Use port from loaded configuration
	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
