package models

import "time"

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusSyncing = "syncing"
)

// AlertSettings are the per-device thresholds evaluated on every ingested reading.
type AlertSettings struct {
	VOCWarn           float64 `json:"voc_warn"`
	VOCCrit           float64 `json:"voc_crit"`
	CFUWarn           float64 `json:"cfu_warn"`
	CFUCrit           float64 `json:"cfu_crit"`
	ShelfLifeMinHours float64 `json:"shelf_life_min_hours"`
}

// DefaultAlertSettings returns the thresholds applied to newly registered devices.
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		VOCWarn:           600,
		VOCCrit:           900,
		CFUWarn:           50000,
		CFUCrit:           100000,
		ShelfLifeMinHours: 12,
	}
}

type Device struct {
	DeviceID        string        `json:"device_id" gorm:"primaryKey;size:64"`
	Name            string        `json:"name"`
	Location        string        `json:"location"`
	Status          string        `json:"status" gorm:"default:offline"`
	LastSeen        time.Time     `json:"last_seen"`
	FirmwareVersion string        `json:"firmware_version"`
	CalibratedAt    *time.Time    `json:"calibrated_at,omitempty"`
	Settings        AlertSettings `json:"settings" gorm:"serializer:json"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
