package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/service"
)

func PostHabit(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.HabitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateHabitRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Habit validation failed")
			return
		}

		habit, err := service.CreateHabit(c.Request.Context(), app.Store(), app.Results(), user, &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to create habit")
			return
		}
		HandleSuccess(c, app.Logger(), habit, nil)
	}
}

func GetHabits(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var asOf *internal.Date
		if raw := c.Query("as_of"); raw != "" {
			d, err := internal.ParseDate(raw)
			if err != nil {
				HandleError(c, app.Logger(), err, 400, "Invalid as_of date")
				return
			}
			asOf = &d
		}

		habits, err := service.ListHabits(c.Request.Context(), app.Store(), app.Results(),
			app.Config().HabitListTTL, user, asOf)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch habits")
			return
		}
		HandleSuccess(c, app.Logger(), habits, nil)
	}
}

func PutHabit(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.HabitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateHabitRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Habit validation failed")
			return
		}

		habit, err := service.UpdateHabit(c.Request.Context(), app.Store(), app.Results(),
			user, c.Param("habitID"), &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update habit")
			return
		}
		HandleSuccess(c, app.Logger(), habit, nil)
	}
}

func DeleteHabit(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		err := service.DeleteHabit(c.Request.Context(), app.Store(), app.Results(), user, c.Param("habitID"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete habit")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deleted": true})
	}
}
