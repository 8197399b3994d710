package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keerthana1830/Lacteva/config"
	"github.com/keerthana1830/Lacteva/models"
	"github.com/keerthana1830/Lacteva/store"
)

type batchRequest struct {
	DeviceID    string `json:"device_id" binding:"required"`
	WindowStart string `json:"window_start" binding:"required"`
	WindowEnd   string `json:"window_end" binding:"required"`
}

// RunBatchAnalysis aggregates a device's readings over a time window and
// stores the summary.
func RunBatchAnalysis(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if !user.CanSeeDevice(req.DeviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	start, err := time.Parse(time.RFC3339, req.WindowStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window_start must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.WindowEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window_end must be RFC3339"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window_end must be after window_start"})
		return
	}

	readings, err := config.Store.Readings(store.ReadingFilter{
		DeviceID: req.DeviceID,
		Since:    &start,
		Until:    &end,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch readings"})
		return
	}
	if len(readings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No readings in the requested window"})
		return
	}

	analysis := summarize(req.DeviceID, start, end, readings)

	alerts, err := config.Store.Alerts(store.AlertFilter{DeviceID: req.DeviceID})
	if err == nil {
		for _, a := range alerts {
			if !a.CreatedAt.Before(start) && !a.CreatedAt.After(end) {
				analysis.AlertCount++
			}
		}
	}

	if err := config.Store.CreateBatchAnalysis(analysis); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store analysis"})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// summarize computes the aggregate block. The spoilage trend is the
// least-squares slope of freshness score against hours elapsed.
func summarize(deviceID string, start, end time.Time, readings []models.SpectralReading) *models.BatchAnalysis {
	analysis := &models.BatchAnalysis{
		ID:           uuid.NewString(),
		DeviceID:     deviceID,
		WindowStart:  start,
		WindowEnd:    end,
		ReadingCount: len(readings),
		CreatedAt:    time.Now().UTC(),
	}

	var vocSum, cfuSum float64
	var freshSum float64
	var scored int
	var sumX, sumY, sumXY, sumXX float64
	minFresh, maxFresh := 1.0, 0.0

	for i := range readings {
		r := &readings[i]
		vocSum += r.VOCRaw
		cfuSum += r.CFUEstimate

		if r.Prediction == nil {
			continue
		}
		score := r.Prediction.FreshnessScore
		scored++
		freshSum += score
		if score < minFresh {
			minFresh = score
		}
		if score > maxFresh {
			maxFresh = score
		}

		hours := r.Timestamp.Sub(start).Hours()
		sumX += hours
		sumY += score
		sumXY += hours * score
		sumXX += hours * hours
	}

	analysis.AvgVOC = vocSum / float64(len(readings))
	analysis.AvgCFU = cfuSum / float64(len(readings))

	if scored > 0 {
		analysis.AvgFreshness = freshSum / float64(scored)
		analysis.MinFreshness = minFresh
		analysis.MaxFreshness = maxFresh
	}
	if scored > 1 {
		n := float64(scored)
		denom := n*sumXX - sumX*sumX
		if denom != 0 {
			analysis.SpoilageTrend = (n*sumXY - sumX*sumY) / denom
		}
	}
	return analysis
}

// ListBatchAnalyses returns stored analyses, optionally filtered by device.
func ListBatchAnalyses(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	deviceID := c.Query("device_id")
	if deviceID != "" && !user.CanSeeDevice(deviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	analyses, err := config.Store.BatchAnalyses(deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analyses"})
		return
	}

	if !user.IsAdmin() {
		visible := analyses[:0]
		for _, a := range analyses {
			if user.Devices.Contains(a.DeviceID) {
				visible = append(visible, a)
			}
		}
		analyses = visible
	}
	c.JSON(http.StatusOK, analyses)
}
