package utils

import (
	"fmt"

	"github.com/keerthana1830/Lacteva/models"
	"github.com/keerthana1830/Lacteva/spectral"
)

// EvaluateAlerts checks a reading against the device's thresholds and returns
// one alert per triggered condition. The reading's Features and Prediction
// blocks may be nil; conditions that depend on them are skipped.
func EvaluateAlerts(device *models.Device, reading *models.SpectralReading) []models.Alert {
	var alerts []models.Alert
	t := device.Settings

	add := func(alertType, severity, message string) {
		alerts = append(alerts, models.Alert{
			DeviceID:  device.DeviceID,
			Type:      alertType,
			Severity:  severity,
			Message:   message,
			ReadingID: reading.ID,
		})
	}

	switch {
	case reading.VOCRaw >= t.VOCCrit:
		add(models.AlertVOCHigh, models.SeverityCritical,
			fmt.Sprintf("VOC level %.0f exceeds critical threshold %.0f", reading.VOCRaw, t.VOCCrit))
	case reading.VOCRaw >= t.VOCWarn:
		add(models.AlertVOCHigh, models.SeverityWarning,
			fmt.Sprintf("VOC level %.0f exceeds warning threshold %.0f", reading.VOCRaw, t.VOCWarn))
	}

	cfuCritical := reading.CFUEstimate >= t.CFUCrit
	switch {
	case cfuCritical:
		add(models.AlertCFUHigh, models.SeverityCritical,
			fmt.Sprintf("CFU estimate %.0f exceeds critical threshold %.0f", reading.CFUEstimate, t.CFUCrit))
	case reading.CFUEstimate >= t.CFUWarn:
		add(models.AlertCFUHigh, models.SeverityWarning,
			fmt.Sprintf("CFU estimate %.0f exceeds warning threshold %.0f", reading.CFUEstimate, t.CFUWarn))
	}

	if p := reading.Prediction; p != nil {
		if p.ShelfLifeHours < t.ShelfLifeMinHours {
			add(models.AlertShelfLifeLow, models.SeverityWarning,
				fmt.Sprintf("Predicted shelf life %.1fh below minimum %.1fh", p.ShelfLifeHours, t.ShelfLifeMinHours))
		}
		if cfuCritical && p.Category == spectral.CategorySpoiled {
			add(models.AlertContamination, models.SeverityCritical,
				"Spoiled classification with critical CFU count, possible contamination")
		}
	}

	if f := reading.Features; f != nil && f.TotalIntensity > 0 {
		mean := f.TotalIntensity / spectral.NumChannels
		deadChannel := false
		for _, v := range reading.RawChannels {
			if v == 0 {
				deadChannel = true
				break
			}
		}
		if deadChannel || f.IntensityStd > 5*mean {
			add(models.AlertSensorDeviation, models.SeverityWarning,
				"Channel readings deviate from expected spectral profile, check sensor")
		}
	}

	return alerts
}

// RiskLevel derives the dashboard risk level from the freshness category and
// the alerts raised by the same reading.
func RiskLevel(category string, alerts []models.Alert) string {
	if category == spectral.CategorySpoiled {
		return models.RiskHigh
	}
	for _, a := range alerts {
		if a.Severity == models.SeverityCritical {
			return models.RiskHigh
		}
	}
	if category == spectral.CategoryModerate {
		return models.RiskMedium
	}
	for _, a := range alerts {
		if a.Severity == models.SeverityWarning {
			return models.RiskMedium
		}
	}
	return models.RiskLow
}
