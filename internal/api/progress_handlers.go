package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/service"
)

func GetProgressOverview(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		overview, err := service.GetProgressOverview(c.Request.Context(), app.Store(), app.Results(),
			app.Config().OverviewTTL, user.ID, c.Query("timezone"), c.Query("start_date"), c.Query("end_date"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to compute progress overview")
			return
		}
		HandleSuccess(c, app.Logger(), overview, nil)
	}
}
