package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) AdminStats(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	stats, err := a.Requests.GetRequestStats(c.Request.Context())
	if err != nil {
		abort(c, http.StatusServiceUnavailable, "Service unavailable, try again later")

		zap.L().Error("Failed to load request stats", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, stats)
}
