package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keerthana1830/Lacteva/models"
)

func TestMemoryStoreUsers(t *testing.T) {
	s := NewMemoryStore()

	u := &models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, s.CreateUser(u))
	assert.NotZero(t, u.ID)
	assert.Equal(t, models.RoleFieldOp, u.Role)

	dup := &models.User{Username: "alice", Email: "other@example.com"}
	assert.ErrorIs(t, s.CreateUser(dup), ErrConflict)

	got, err := s.UserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, s.UpdateUserRole("alice@example.com", models.RoleAdmin))
	got, err = s.UserByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	assert.ErrorIs(t, s.UpdateUserRole("missing@example.com", models.RoleAdmin), ErrNotFound)
}

func TestMemoryStoreDeviceSweep(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	require.NoError(t, s.UpsertDevice(&models.Device{
		DeviceID: "LACTEVA_001", Status: models.StatusOnline, LastSeen: now.Add(-10 * time.Minute),
	}))
	require.NoError(t, s.UpsertDevice(&models.Device{
		DeviceID: "LACTEVA_002", Status: models.StatusOnline, LastSeen: now,
	}))

	flipped, err := s.MarkStaleOffline(now.Add(-5 * time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, flipped)

	d, err := s.DeviceByID("LACTEVA_001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, d.Status)

	d, err = s.DeviceByID("LACTEVA_002")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnline, d.Status)
}

func TestMemoryStoreReadingFilters(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		device := "LACTEVA_001"
		if i%2 == 1 {
			device = "LACTEVA_002"
		}
		require.NoError(t, s.CreateReading(&models.SpectralReading{
			DeviceID:  device,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			VOCRaw:    float64(100 * i),
		}))
	}

	all, err := s.Readings(ReadingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	// newest first
	assert.True(t, all[0].Timestamp.After(all[4].Timestamp))

	byDevice, err := s.Readings(ReadingFilter{DeviceID: "LACTEVA_001"})
	require.NoError(t, err)
	assert.Len(t, byDevice, 3)

	since := base.Add(90 * time.Minute)
	windowed, err := s.Readings(ReadingFilter{Since: &since})
	require.NoError(t, err)
	assert.Len(t, windowed, 3)

	limited, err := s.Readings(ReadingFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	// empty non-nil scope matches nothing
	scoped, err := s.Readings(ReadingFilter{DeviceIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, scoped)

	latest, err := s.LatestReading("LACTEVA_001")
	require.NoError(t, err)
	assert.Equal(t, base.Add(4*time.Hour), latest.Timestamp)

	_, err = s.LatestReading("LACTEVA_999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreAlerts(t *testing.T) {
	s := NewMemoryStore()

	a1 := &models.Alert{DeviceID: "LACTEVA_001", Type: models.AlertVOCHigh, Severity: models.SeverityWarning}
	a2 := &models.Alert{DeviceID: "LACTEVA_002", Type: models.AlertCFUHigh, Severity: models.SeverityCritical}
	require.NoError(t, s.CreateAlert(a1))
	require.NoError(t, s.CreateAlert(a2))

	count, err := s.CountUnacknowledged(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = s.CountUnacknowledged([]string{"LACTEVA_001"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, s.AcknowledgeAlert(a1.ID, time.Now()))
	got, err := s.AlertByID(a1.ID)
	require.NoError(t, err)
	assert.True(t, got.Acknowledged)
	require.NotNil(t, got.AcknowledgedAt)

	ack := false
	open, err := s.Alerts(AlertFilter{Acknowledged: &ack})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, a2.ID, open[0].ID)

	assert.ErrorIs(t, s.AcknowledgeAlert(999, time.Now()), ErrNotFound)
}

func TestMemoryStoreSeedDemoDevices(t *testing.T) {
	s := NewMemoryStore()
	s.SeedDemoDevices()

	devices, err := s.Devices()
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, "LACTEVA_001", devices[0].DeviceID)
	assert.Equal(t, models.DefaultAlertSettings(), devices[0].Settings)
}
