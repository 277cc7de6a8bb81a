package player

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/rafiakbrr/scrimhub/internal/middleware"
)

// PlayerRoutes sets up all player profile routes
func PlayerRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	repo := NewPlayerRepository(db)
	controller := NewPlayerController(repo)

	// Public player routes
	router.GET("/players", controller.ListPlayers)
	router.GET("/players/:player_id", controller.GetPlayerByID)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(jwtSecret))
	{
		authRoutes.GET("/players/me", controller.GetMyProfile)
		authRoutes.PUT("/players/me", controller.UpsertMyProfile)
	}
}
