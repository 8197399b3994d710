package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keerthana1830/Lacteva/config"
	"github.com/keerthana1830/Lacteva/spectral"
)

// MLStatus proxies the inference service's health endpoint.
func MLStatus(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	health, err := ML.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ML service unreachable", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, health)
}

// MLModelInfo proxies the inference service's model metadata.
func MLModelInfo(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	info, err := ML.ModelInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model metadata not available", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// Retrain exports the caller's readings as CSV and forwards them to the
// training endpoint.
func Retrain(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	f, ok := readingFilterFromQuery(c, user)
	if !ok {
		return
	}
	f.Limit = 0

	readings, err := config.Store.Readings(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch readings"})
		return
	}
	if len(readings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No readings available for training"})
		return
	}

	var buf bytes.Buffer
	for i := range readings {
		fmt.Fprintln(&buf, spectral.FormatCSVLine(recordFromReading(&readings[i])))
	}

	result, err := ML.Retrain(c.Request.Context(), buf.Bytes())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrain model", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Model retraining completed",
		"reading_count": len(readings),
		"training_data": result,
	})
}
