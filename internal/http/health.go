package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck responds to liveness probes.
// GET /health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
