package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers the uptime checks, it never touches the database
func (a *API) Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
