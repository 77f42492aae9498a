package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/auth"
)

// Router wires middleware and routes. Handlers stay thin; all scheduling
// and streak math lives in the service package.
func Router(app App, provider auth.Provider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE"},
	}))
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger(app.Logger()))
	r.Use(auth.AuthMiddleware(provider, app.Config()))

	r.POST("/api/habits", PostHabit(app))
	r.GET("/api/habits", GetHabits(app))
	r.PUT("/api/habits/:habitID", PutHabit(app))
	r.DELETE("/api/habits/:habitID", DeleteHabit(app))
	r.POST("/api/habits/:habitID/toggle", PostToggleCompletion(app))
	r.GET("/api/habits/:habitID/stats", GetHabitStats(app))
	r.GET("/api/progress/overview", GetProgressOverview(app))

	return r
}
