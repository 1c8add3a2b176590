package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	environment string
	now         func() time.Time
}

func NewHealthController(environment string) *HealthController {
	return &HealthController{environment: environment, now: time.Now}
}

// Health reports that the process is serving requests
// GET /health, GET /api/health
func (ctrl *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   ctrl.now().UTC().Format(time.RFC3339),
		"environment": ctrl.environment,
	})
}
