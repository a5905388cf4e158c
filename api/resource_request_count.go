package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResourceRequestCount returns the cumulative demand for one resource
func (a *API) ResourceRequestCount(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	url := c.Query("url")
	if url == "" {
		abort(c, http.StatusBadRequest, "url query parameter can't be empty")
		return
	}

	count, err := a.Requests.GetRequestCount(c.Request.Context(), url)
	if err != nil {
		abort(c, http.StatusServiceUnavailable, "Service unavailable, try again later")

		zap.L().Error("Failed to load request count", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":   url,
		"count": count,
	})
}
