package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/rafiakbrr/scrimhub/internal/player"
	"github.com/rafiakbrr/scrimhub/internal/scrim"
	"github.com/rafiakbrr/scrimhub/internal/team"
)

func SetupRoutes(db *gorm.DB, jwtSecret string) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "ScrimHub API",
			"docs":    "/swagger/index.html",
			"healthy": true,
		})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	player.PlayerRoutes(api, db, jwtSecret)
	team.TeamRoutes(api, db, jwtSecret)
	scrim.ScrimRoutes(api, db, jwtSecret)

	return r
}
