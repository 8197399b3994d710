package models

import "time"

const (
	AlertVOCHigh         = "voc_high"
	AlertCFUHigh         = "cfu_high"
	AlertShelfLifeLow    = "shelf_life_low"
	AlertSensorDeviation = "sensor_deviation"
	AlertContamination   = "contamination"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type Alert struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	DeviceID       string     `json:"device_id" gorm:"index;size:64;not null"`
	UserID         uint       `json:"user_id" gorm:"index"`
	Type           string     `json:"type" gorm:"size:32;not null"`
	Severity       string     `json:"severity" gorm:"size:16;not null"`
	Message        string     `json:"message"`
	ReadingID      uint       `json:"reading_id"`
	Acknowledged   bool       `json:"acknowledged" gorm:"default:false;index"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
