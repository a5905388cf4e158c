package api

import (
	"bitwise74/leads-api/model"
	"bitwise74/leads-api/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type statusBody struct {
	Status model.RequestStatus `json:"status"`
}

func (a *API) AdminUpdateStatus(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	id := c.Param("id")

	var data statusBody
	if err := c.ShouldBindJSON(&data); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := a.Requests.UpdateRequestStatus(c.Request.Context(), id, data.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			abort(c, http.StatusBadRequest, "Invalid status")
		case errors.Is(err, service.ErrNotFound):
			abort(c, http.StatusNotFound, "Resource request not found")
		default:
			abort(c, http.StatusServiceUnavailable, "Service unavailable, try again later")

			zap.L().Error("Failed to update request status", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     id,
		"status": data.Status,
	})
}
