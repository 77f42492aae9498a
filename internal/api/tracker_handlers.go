package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/service"
)

func PostToggleCompletion(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.ToggleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateToggleRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Toggle validation failed")
			return
		}

		result, err := service.ToggleCompletion(c.Request.Context(), app.Store(), app.Results(),
			user, c.Param("habitID"), &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to toggle completion")
			return
		}
		HandleSuccess(c, app.Logger(), result, nil)
	}
}

func GetHabitStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		stats, err := service.GetHabitStats(c.Request.Context(), app.Store(), app.Results(),
			app.Config().HabitStatsTTL, user.ID, c.Param("habitID"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch habit stats")
			return
		}
		HandleSuccess(c, app.Logger(), stats, nil)
	}
}
