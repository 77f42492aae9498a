package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case 400:
		resp = response.BadRequest(msg + ": " + err.Error())
	case 404:
		resp = response.NotFound(msg + ": " + err.Error())
	case 500:
		resp = response.InternalError(msg)
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

// HandleServiceError maps the service error taxonomy onto HTTP statuses.
// Database causes stay opaque to callers.
func HandleServiceError(c *gin.Context, logger internal.Logger, err error, msg string) {
	switch {
	case internal.IsValidation(err):
		HandleError(c, logger, err, 400, msg)
	case internal.IsNotFound(err):
		HandleError(c, logger, err, 404, msg)
	default:
		HandleError(c, logger, err, 500, msg)
	}
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(200, response.Success(data, meta))
}
