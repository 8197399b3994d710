package models

import (
	"time"

	"github.com/keerthana1830/Lacteva/spectral"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Prediction is the ML inference result attached to a reading.
type Prediction struct {
	FreshnessScore float64 `json:"freshness_score"`
	Category       string  `json:"category"`
	ShelfLifeHours float64 `json:"shelf_life_hours"`
	Confidence     float64 `json:"confidence"`
	ModelAccuracy  float64 `json:"model_accuracy"`
	RiskLevel      string  `json:"risk_level"`
}

// Channels is a JSON-serialized fixed-length spectral channel array.
type Channels []float64

type SpectralReading struct {
	ID              uint               `json:"id" gorm:"primaryKey"`
	DeviceID        string             `json:"device_id" gorm:"index;size:64;not null"`
	Timestamp       time.Time          `json:"timestamp" gorm:"index"`
	VOCRaw          float64            `json:"voc_raw"`
	VOCVoltage      float64            `json:"voc_voltage"`
	LEDMode         string             `json:"led_mode"`
	RawChannels     Channels           `json:"raw_channels" gorm:"serializer:json"`
	ReflectChannels Channels           `json:"reflect_channels" gorm:"serializer:json"`
	AbsChannels     Channels           `json:"abs_channels" gorm:"serializer:json"`
	CFUEstimate     float64            `json:"cfu_estimate"`
	Features        *spectral.Features `json:"features,omitempty" gorm:"serializer:json"`
	Prediction      *Prediction        `json:"prediction,omitempty" gorm:"serializer:json"`
}
