package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keerthana1830/Lacteva/models"
	"github.com/keerthana1830/Lacteva/spectral"
)

func testDevice() *models.Device {
	return &models.Device{
		DeviceID: "LACTEVA_001",
		Settings: models.DefaultAlertSettings(),
	}
}

func alertTypes(alerts []models.Alert) map[string]string {
	out := make(map[string]string)
	for _, a := range alerts {
		out[a.Type] = a.Severity
	}
	return out
}

func TestEvaluateAlertsClean(t *testing.T) {
	reading := &models.SpectralReading{
		DeviceID:    "LACTEVA_001",
		VOCRaw:      250,
		CFUEstimate: 5000,
		Prediction: &models.Prediction{
			Category:       spectral.CategoryFresh,
			ShelfLifeHours: 60,
		},
	}
	alerts := EvaluateAlerts(testDevice(), reading)
	assert.Empty(t, alerts)
}

func TestEvaluateAlertsVOCThresholds(t *testing.T) {
	reading := &models.SpectralReading{DeviceID: "LACTEVA_001", VOCRaw: 650}
	types := alertTypes(EvaluateAlerts(testDevice(), reading))
	assert.Equal(t, models.SeverityWarning, types[models.AlertVOCHigh])

	reading.VOCRaw = 950
	types = alertTypes(EvaluateAlerts(testDevice(), reading))
	assert.Equal(t, models.SeverityCritical, types[models.AlertVOCHigh])
}

func TestEvaluateAlertsContamination(t *testing.T) {
	reading := &models.SpectralReading{
		DeviceID:    "LACTEVA_001",
		CFUEstimate: 150000,
		Prediction: &models.Prediction{
			Category:       spectral.CategorySpoiled,
			ShelfLifeHours: 2,
		},
	}
	types := alertTypes(EvaluateAlerts(testDevice(), reading))

	assert.Equal(t, models.SeverityCritical, types[models.AlertCFUHigh])
	assert.Equal(t, models.SeverityCritical, types[models.AlertContamination])
	assert.Equal(t, models.SeverityWarning, types[models.AlertShelfLifeLow])
}

func TestEvaluateAlertsSensorDeviation(t *testing.T) {
	raw := []float64{0, 200, 300, 400, 500, 600, 700, 800, 400, 300, 200, 100}
	refl := make([]float64, spectral.NumChannels)
	absorb := make([]float64, spectral.NumChannels)
	for i := range refl {
		refl[i] = 40
		absorb[i] = 0.3
	}
	features, err := spectral.ComputeFeatures(raw, refl, absorb)
	require.NoError(t, err)

	reading := &models.SpectralReading{
		DeviceID:    "LACTEVA_001",
		RawChannels: raw,
		Features:    features,
	}
	types := alertTypes(EvaluateAlerts(testDevice(), reading))
	assert.Equal(t, models.SeverityWarning, types[models.AlertSensorDeviation])
}

func TestEvaluateAlertsSkipsPredictionChecksWhenAbsent(t *testing.T) {
	reading := &models.SpectralReading{DeviceID: "LACTEVA_001", CFUEstimate: 150000}
	types := alertTypes(EvaluateAlerts(testDevice(), reading))

	assert.Contains(t, types, models.AlertCFUHigh)
	assert.NotContains(t, types, models.AlertContamination)
	assert.NotContains(t, types, models.AlertShelfLifeLow)
}

func TestRiskLevel(t *testing.T) {
	critical := []models.Alert{{Severity: models.SeverityCritical}}
	warning := []models.Alert{{Severity: models.SeverityWarning}}

	assert.Equal(t, models.RiskHigh, RiskLevel(spectral.CategorySpoiled, nil))
	assert.Equal(t, models.RiskHigh, RiskLevel(spectral.CategoryFresh, critical))
	assert.Equal(t, models.RiskMedium, RiskLevel(spectral.CategoryModerate, nil))
	assert.Equal(t, models.RiskMedium, RiskLevel(spectral.CategoryFresh, warning))
	assert.Equal(t, models.RiskLow, RiskLevel(spectral.CategoryFresh, nil))
}
