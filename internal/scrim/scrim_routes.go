package scrim

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/rafiakbrr/scrimhub/internal/middleware"
)

// ScrimRoutes sets up all calendar and scrim request routes
func ScrimRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	repo := NewScrimRepository(db)
	service := NewScrimService(repo)
	controller := NewScrimController(service)

	// Public availability routes
	router.GET("/teams/:team_id/scrim-settings", controller.GetSettings)
	router.GET("/teams/:team_id/availability", controller.GetAvailability)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(jwtSecret))
	{
		// Calendar management (leader only, enforced in the service)
		authRoutes.PUT("/teams/:team_id/scrim-settings", controller.SetCapacity)
		authRoutes.PUT("/teams/:team_id/scrim-settings/windows/:day", controller.SetWindow)
		authRoutes.DELETE("/teams/:team_id/scrim-settings/windows/:day", controller.ClearWindow)

		// Negotiation
		authRoutes.GET("/scrims/opponents", controller.GetOpponents)
		authRoutes.POST("/scrims", controller.CreateRequest)
		authRoutes.GET("/scrims", controller.ListRequests)
		authRoutes.PUT("/scrims/:request_id/:action", controller.RespondToRequest)
		authRoutes.POST("/scrims/:request_id/complete", controller.CompleteRequest)
		authRoutes.DELETE("/scrims/:request_id", controller.DeleteRequest)
	}
}
