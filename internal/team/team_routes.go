package team

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/rafiakbrr/scrimhub/internal/middleware"
)

// TeamRoutes sets up all roster and application routes
func TeamRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	repo := NewTeamRepository(db)
	service := NewTeamService(repo)
	controller := NewTeamController(service)

	// Public team routes
	router.GET("/teams", controller.GetAllTeams)
	router.GET("/teams/:team_id", controller.GetTeamByID)
	router.GET("/teams/:team_id/members", controller.GetTeamMembers)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(jwtSecret))
	{
		authRoutes.POST("/teams", controller.CreateTeam)
		authRoutes.GET("/users/me/team", controller.GetMyTeam)
		authRoutes.POST("/teams/:team_id/leave", controller.LeaveTeam)
		authRoutes.DELETE("/teams/:team_id/members/:player_id", controller.RemoveTeamMember)

		// Applications
		authRoutes.POST("/teams/:team_id/applications", controller.RequestToJoinTeam)
		authRoutes.GET("/teams/:team_id/applications", controller.GetApplicationsForTeam)
		authRoutes.PUT("/applications/:application_id/:action", controller.RespondToApplication)
		authRoutes.GET("/users/me/applications", controller.GetMyApplications)
		authRoutes.DELETE("/applications/:application_id", controller.CancelApplication)
	}
}
