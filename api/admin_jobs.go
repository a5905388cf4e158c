package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminCleanup runs the retention cleanup without waiting for the schedule
func (a *API) AdminCleanup(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	deleted, err := a.Requests.CleanupOldRequests(c.Request.Context())
	if err != nil {
		abort(c, http.StatusServiceUnavailable, "Service unavailable, try again later")

		zap.L().Error("Failed to cleanup old requests", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
	})
}

func (a *API) AdminWeeklyReport(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	sent, err := a.Requests.SendWeeklyReport(c.Request.Context())
	if err != nil {
		abort(c, http.StatusServiceUnavailable, "Service unavailable, try again later")

		zap.L().Error("Failed to build weekly report", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !sent {
		abort(c, http.StatusBadGateway, "Weekly report could not be sent")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sent": true,
	})
}

// AdminEmailCheck sends a test email to the admin address
func (a *API) AdminEmailCheck(c *gin.Context) {
	if !a.Email.TestConfiguration(c.Request.Context()) {
		abort(c, http.StatusBadGateway, "Test email could not be sent, check the logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sent": true,
	})
}
