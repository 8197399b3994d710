package models

import "time"

// BatchAnalysis is an aggregate summary over a window of readings for one device.
type BatchAnalysis struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	DeviceID      string    `json:"device_id" gorm:"index;size:64;not null"`
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	ReadingCount  int       `json:"reading_count"`
	AvgFreshness  float64   `json:"avg_freshness"`
	MinFreshness  float64   `json:"min_freshness"`
	MaxFreshness  float64   `json:"max_freshness"`
	AvgVOC        float64   `json:"avg_voc"`
	AvgCFU        float64   `json:"avg_cfu"`
	SpoilageTrend float64   `json:"spoilage_trend"` // freshness delta per hour
	AlertCount    int       `json:"alert_count"`
	CreatedAt     time.Time `json:"created_at"`
}
