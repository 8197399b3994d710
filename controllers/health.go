package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/keerthana1830/Lacteva/config"
)

// Healthz reports service, store and ML-service reachability.
func Healthz(c *gin.Context) {
	storeOK := config.Store.Ping() == nil

	mlOK := false
	if _, err := ML.Health(c.Request.Context()); err == nil {
		mlOK = true
	}

	status := http.StatusOK
	overall := "ok"
	if !storeOK {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":     overall,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"store":      storeOK,
		"ml_service": mlOK,
		"mock_store": config.DB == nil,
	})
}
