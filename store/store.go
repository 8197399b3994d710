// Package store abstracts persistence so the API can run against PostgreSQL
// or, when no database is configured, an in-memory mock.
package store

import (
	"errors"
	"time"

	"github.com/keerthana1830/Lacteva/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("store: record not found")

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("store: record already exists")

// ReadingFilter narrows reading queries. A nil time bound is open-ended.
// DeviceIDs, when non-nil, restricts results to the listed devices (ownership
// scoping for non-admin users); an empty non-nil list matches nothing.
type ReadingFilter struct {
	DeviceID  string
	DeviceIDs []string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

// AlertFilter narrows alert queries.
type AlertFilter struct {
	DeviceID     string
	DeviceIDs    []string
	Acknowledged *bool
	Limit        int
}

type Store interface {
	// Users
	CreateUser(u *models.User) error
	UserByID(id uint) (*models.User, error)
	UserByUsername(username string) (*models.User, error)
	Users() ([]models.User, error)
	UpdateUser(u *models.User) error
	UpdateUserRole(email, role string) error
	DeleteUser(id uint) error

	// Devices
	UpsertDevice(d *models.Device) error
	DeviceByID(deviceID string) (*models.Device, error)
	Devices() ([]models.Device, error)
	DeleteDevice(deviceID string) error
	// MarkStaleOffline flips online/syncing devices to offline when their
	// LastSeen is before the deadline. Returns the number of devices flipped.
	MarkStaleOffline(deadline time.Time) (int64, error)

	// Readings
	CreateReading(r *models.SpectralReading) error
	ReadingByID(id uint) (*models.SpectralReading, error)
	Readings(f ReadingFilter) ([]models.SpectralReading, error)
	LatestReading(deviceID string) (*models.SpectralReading, error)
	UpdateReading(r *models.SpectralReading) error
	DeleteReading(id uint) error
	DeleteAllReadings() error

	// Alerts
	CreateAlert(a *models.Alert) error
	AlertByID(id uint) (*models.Alert, error)
	Alerts(f AlertFilter) ([]models.Alert, error)
	AcknowledgeAlert(id uint, at time.Time) error
	CountUnacknowledged(deviceIDs []string) (int64, error)

	// Batch analyses
	CreateBatchAnalysis(b *models.BatchAnalysis) error
	BatchAnalyses(deviceID string) ([]models.BatchAnalysis, error)

	Ping() error
}
