package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keerthana1830/Lacteva/config"
	"github.com/keerthana1830/Lacteva/mlclient"
	"github.com/keerthana1830/Lacteva/models"
	"github.com/keerthana1830/Lacteva/spectral"
	"github.com/keerthana1830/Lacteva/store"
)

func freshMLServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.PredictResponse{
			FreshnessPrediction: 0.85,
			ShelfLifeHours:      60,
			Confidence:          0.9,
			ModelAccuracy:       0.95,
			PredictionLabel:     "fresh",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func downMLServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Models not loaded properly", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupTest wires a memory store, the given ML stub and a router that runs
// requests as the given user.
func setupTest(t *testing.T, ml *httptest.Server, user *models.User) (*gin.Engine, *store.MemoryStore) {
	gin.SetMode(gin.TestMode)

	mem := store.NewMemoryStore()
	config.Store = mem
	require.NoError(t, mem.CreateUser(user))

	ML = mlclient.New(ml.URL, time.Second)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", user.ID)
	})
	r.POST("/api/readings", IngestReading)
	r.POST("/api/readings/import", ImportCSV)
	r.GET("/api/readings", GetReadings)
	r.GET("/api/readings/latest", GetLatestReading)
	r.GET("/api/alerts/count", GetAlertCount)
	return r, mem
}

func ingestBody(deviceID string, vocRaw float64) []byte {
	raw := []float64{1000, 1200, 1400, 1600, 2400, 1800, 1500, 1300, 900, 850, 800, 750}
	refl := []float64{30, 35, 40, 45, 60, 50, 42, 38, 25, 24, 23, 22}
	absorb := []float64{0.52, 0.46, 0.4, 0.35, 0.22, 0.3, 0.38, 0.42, 0.6, 0.62, 0.64, 0.66}
	body, _ := json.Marshal(gin.H{
		"device_id":        deviceID,
		"timestamp_ms":     1700000000000,
		"voc_raw":          vocRaw,
		"voc_voltage":      vocRaw * 0.003,
		"led_mode":         "WHITE",
		"raw_channels":     raw,
		"reflect_channels": refl,
		"abs_channels":     absorb,
		"cfu_estimate":     8500,
	})
	return body
}

func doJSON(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIngestReading(t *testing.T) {
	admin := &models.User{Username: "admin", Email: "a@example.com", Role: models.RoleAdmin}
	r, mem := setupTest(t, freshMLServer(t), admin)

	w := doJSON(r, http.MethodPost, "/api/readings", ingestBody("LACTEVA_001", 250))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	readings, err := mem.Readings(store.ReadingFilter{DeviceID: "LACTEVA_001"})
	require.NoError(t, err)
	require.Len(t, readings, 1)

	got := readings[0]
	require.NotNil(t, got.Features)
	require.NotNil(t, got.Prediction)
	assert.Equal(t, spectral.CategoryFresh, got.Prediction.Category)
	assert.Equal(t, models.RiskLow, got.Prediction.RiskLevel)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), got.Timestamp)

	// device auto-registered and online after a successful prediction
	device, err := mem.DeviceByID("LACTEVA_001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnline, device.Status)
	assert.Equal(t, models.DefaultAlertSettings(), device.Settings)
}

func TestIngestReadingRejectsShortChannelArray(t *testing.T) {
	admin := &models.User{Username: "admin", Email: "a@example.com", Role: models.RoleAdmin}
	r, mem := setupTest(t, freshMLServer(t), admin)

	body, _ := json.Marshal(gin.H{
		"device_id":        "LACTEVA_001",
		"raw_channels":     []float64{1, 2, 3},
		"reflect_channels": []float64{1, 2, 3},
		"abs_channels":     []float64{1, 2, 3},
	})
	w := doJSON(r, http.MethodPost, "/api/readings", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	readings, err := mem.Readings(store.ReadingFilter{})
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestIngestReadingSurvivesMLOutage(t *testing.T) {
	admin := &models.User{Username: "admin", Email: "a@example.com", Role: models.RoleAdmin}
	r, mem := setupTest(t, downMLServer(t), admin)

	w := doJSON(r, http.MethodPost, "/api/readings", ingestBody("LACTEVA_001", 250))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	readings, err := mem.Readings(store.ReadingFilter{DeviceID: "LACTEVA_001"})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Nil(t, readings[0].Prediction)
	assert.NotNil(t, readings[0].Features)

	device, err := mem.DeviceByID("LACTEVA_001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSyncing, device.Status)
}

func TestIngestReadingRaisesAlerts(t *testing.T) {
	admin := &models.User{Username: "admin", Email: "a@example.com", Role: models.RoleAdmin}
	r, mem := setupTest(t, freshMLServer(t), admin)

	w := doJSON(r, http.MethodPost, "/api/readings", ingestBody("LACTEVA_001", 950))
	require.Equal(t, http.StatusOK, w.Code)

	alerts, err := mem.Alerts(store.AlertFilter{DeviceID: "LACTEVA_001"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertVOCHigh, alerts[0].Type)
	assert.Equal(t, models.SeverityCritical, alerts[0].Severity)
	assert.NotZero(t, alerts[0].ReadingID)
	assert.Equal(t, admin.ID, alerts[0].UserID)

	w = doJSON(r, http.MethodGet, "/api/alerts/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &count))
	assert.EqualValues(t, 1, count.Count)
}

func TestGetReadingsScopedToOwnedDevices(t *testing.T) {
	operator := &models.User{
		Username: "op", Email: "op@example.com",
		Role:    models.RoleFieldOp,
		Devices: models.StringList{"LACTEVA_001"},
	}
	r, mem := setupTest(t, freshMLServer(t), operator)

	for _, device := range []string{"LACTEVA_001", "LACTEVA_002"} {
		require.NoError(t, mem.CreateReading(&models.SpectralReading{
			DeviceID:  device,
			Timestamp: time.Now().UTC(),
		}))
	}

	w := doJSON(r, http.MethodGet, "/api/readings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var readings []models.SpectralReading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &readings))
	require.Len(t, readings, 1)
	assert.Equal(t, "LACTEVA_001", readings[0].DeviceID)

	// asking for a device outside the scope is rejected
	w = doJSON(r, http.MethodGet, "/api/readings?device_id=LACTEVA_002", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func importRequest(t *testing.T, deviceID string, lines []string) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("device_id", deviceID))
	part, err := writer.CreateFormFile("csv_file", "readings.csv")
	require.NoError(t, err)
	for _, line := range lines {
		_, err := part.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/readings/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportCSV(t *testing.T) {
	admin := &models.User{Username: "admin", Email: "a@example.com", Role: models.RoleAdmin}
	r, mem := setupTest(t, freshMLServer(t), admin)

	rec := &spectral.Record{
		TimestampMS: 1700000000000,
		VOCRaw:      512.5,
		VOCVoltage:  1.538,
		LEDMode:     "WHITE",
		Raw:         []float64{1000, 1200, 1400, 1600, 2400, 1800, 1500, 1300, 900, 850, 800, 750},
		Reflect:     []float64{30, 35, 40, 45, 60, 50, 42, 38, 25, 24, 23, 22},
		Abs:         []float64{0.52, 0.46, 0.4, 0.35, 0.22, 0.3, 0.38, 0.42, 0.6, 0.62, 0.64, 0.66},
		CFUEstimate: 8500,
	}
	lines := []string{
		"# LACTEVA export",
		spectral.FormatCSVLine(rec),
		"not,a,valid,line",
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, importRequest(t, "LACTEVA_001", lines))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Accepted int `json:"accepted"`
		Rejected int `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 1, result.Rejected)

	readings, err := mem.Readings(store.ReadingFilter{DeviceID: "LACTEVA_001"})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), readings[0].Timestamp)
	assert.NotNil(t, readings[0].Features)
	assert.NotNil(t, readings[0].Prediction)
}

func TestImportCSVStampsArrivalTimeForUnsetClock(t *testing.T) {
	admin := &models.User{Username: "admin", Email: "a@example.com", Role: models.RoleAdmin}
	r, mem := setupTest(t, freshMLServer(t), admin)

	rec := &spectral.Record{
		TimestampMS: 0,
		LEDMode:     "UV",
		Raw:         []float64{1000, 1200, 1400, 1600, 2400, 1800, 1500, 1300, 900, 850, 800, 750},
		Reflect:     []float64{30, 35, 40, 45, 60, 50, 42, 38, 25, 24, 23, 22},
		Abs:         []float64{0.52, 0.46, 0.4, 0.35, 0.22, 0.3, 0.38, 0.42, 0.6, 0.62, 0.64, 0.66},
		CFUEstimate: 8500,
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, importRequest(t, "LACTEVA_001", []string{spectral.FormatCSVLine(rec)}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	readings, err := mem.Readings(store.ReadingFilter{DeviceID: "LACTEVA_001"})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.WithinDuration(t, time.Now().UTC(), readings[0].Timestamp, time.Minute)

	// the device's LastSeen follows the stamped time, so it must not land in
	// the past and get swept offline
	device, err := mem.DeviceByID("LACTEVA_001")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), device.LastSeen, time.Minute)
}

func TestGetLatestReadingNotFound(t *testing.T) {
	admin := &models.User{Username: "admin", Email: "a@example.com", Role: models.RoleAdmin}
	r, _ := setupTest(t, freshMLServer(t), admin)

	w := doJSON(r, http.MethodGet, "/api/readings/latest?device_id=LACTEVA_404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
