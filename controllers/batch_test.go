package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/keerthana1830/Lacteva/models"
)

func TestSummarize(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	var readings []models.SpectralReading
	for i, score := range []float64{0.9, 0.8, 0.7} {
		readings = append(readings, models.SpectralReading{
			DeviceID:    "LACTEVA_001",
			Timestamp:   start.Add(time.Duration(i) * time.Hour),
			VOCRaw:      300,
			CFUEstimate: 10000,
			Prediction:  &models.Prediction{FreshnessScore: score},
		})
	}

	analysis := summarize("LACTEVA_001", start, end, readings)

	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, 3, analysis.ReadingCount)
	assert.InDelta(t, 0.8, analysis.AvgFreshness, 1e-9)
	assert.InDelta(t, 0.7, analysis.MinFreshness, 1e-9)
	assert.InDelta(t, 0.9, analysis.MaxFreshness, 1e-9)
	assert.InDelta(t, 300, analysis.AvgVOC, 1e-9)
	assert.InDelta(t, 10000, analysis.AvgCFU, 1e-9)
	assert.InDelta(t, -0.1, analysis.SpoilageTrend, 1e-9)
}

func TestSummarizeWithoutPredictions(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	readings := []models.SpectralReading{
		{DeviceID: "LACTEVA_001", Timestamp: start, VOCRaw: 200, CFUEstimate: 5000},
	}

	analysis := summarize("LACTEVA_001", start, start.Add(time.Hour), readings)

	assert.Equal(t, 1, analysis.ReadingCount)
	assert.Zero(t, analysis.AvgFreshness)
	assert.Zero(t, analysis.SpoilageTrend)
	assert.InDelta(t, 200, analysis.AvgVOC, 1e-9)
}
