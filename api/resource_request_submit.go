package api

import (
	"bitwise74/leads-api/service"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResourceRequestSubmit stores a resource request sent from the website
func (a *API) ResourceRequestSubmit(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data service.Submission
	if err := c.ShouldBindJSON(&data); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			abort(c, http.StatusRequestEntityTooLarge, "Request body size exceeds limit")
			return
		}

		abort(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	id, err := a.Requests.SubmitRequest(c.Request.Context(), data)
	if err != nil {
		var (
			vErr  *service.ValidationError
			rlErr *service.RateLimitError
		)

		switch {
		case errors.As(err, &vErr):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     vErr.Err.Error(),
				"field":     vErr.Field,
				"requestID": requestID,
			})
		case errors.As(err, &rlErr):
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rlErr.RetryAfter.Seconds()))))
			abort(c, http.StatusTooManyRequests, "Daily request limit reached, try again tomorrow")
		case errors.Is(err, service.ErrStorage):
			abort(c, http.StatusServiceUnavailable, "Service unavailable, try again later")

			zap.L().Error("Failed to store resource request", zap.Error(err), zap.String("requestID", requestID))
		default:
			abort(c, http.StatusInternalServerError, "Internal server error")

			zap.L().Error("Failed to submit resource request", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id": id,
	})
}
