package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medislot/utils"
)

// NewHealthHandler reports the latest dependency snapshot. A nil monitor
// reports healthy.
func NewHealthHandler(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if monitor == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		status := monitor.GetHealthStatus()
		code := http.StatusOK
		label := "ok"
		if !status.Healthy {
			code = http.StatusServiceUnavailable
			label = "degraded"
		}
		c.JSON(code, gin.H{"status": label, "health": status})
	}
}
