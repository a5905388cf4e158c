package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// queryLimit parses ?limit=, 0 means the service default
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		abort(c, http.StatusBadRequest, "limit must be a positive number")
		return 0, false
	}

	return n, true
}

func (a *API) AdminMostRequested(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	resources, err := a.Requests.GetMostRequestedResources(c.Request.Context(), limit)
	if err != nil {
		abort(c, http.StatusServiceUnavailable, "Service unavailable, try again later")

		zap.L().Error("Failed to load most requested resources", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resources": resources,
	})
}

func (a *API) AdminPending(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	requests, err := a.Requests.GetPendingRequests(c.Request.Context(), limit)
	if err != nil {
		abort(c, http.StatusServiceUnavailable, "Service unavailable, try again later")

		zap.L().Error("Failed to load pending requests", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
	})
}
