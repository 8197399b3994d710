package controllers

import (
	"bufio"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/keerthana1830/Lacteva/config"
	"github.com/keerthana1830/Lacteva/models"
	"github.com/keerthana1830/Lacteva/spectral"
	"github.com/keerthana1830/Lacteva/store"
	"github.com/keerthana1830/Lacteva/utils"
)

type ingestRequest struct {
	DeviceID        string    `json:"device_id" binding:"required"`
	TimestampMS     int64     `json:"timestamp_ms"`
	VOCRaw          float64   `json:"voc_raw"`
	VOCVoltage      float64   `json:"voc_voltage"`
	LEDMode         string    `json:"led_mode"`
	RawChannels     []float64 `json:"raw_channels" binding:"required"`
	ReflectChannels []float64 `json:"reflect_channels" binding:"required"`
	AbsChannels     []float64 `json:"abs_channels" binding:"required"`
	CFUEstimate     float64   `json:"cfu_estimate"`
}

// IngestReading processes one incoming reading: validates the channel arrays,
// derives features, requests a prediction, evaluates alerts, persists and
// broadcasts. A prediction failure never rejects the reading.
func IngestReading(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	reading := readingFromRequest(&req)
	features, err := spectral.ComputeFeatures(req.RawChannels, req.ReflectChannels, req.AbsChannels)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reading.Features = features

	alertCount, err := processReading(c, user, reading)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store reading"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Reading received successfully",
		"reading_id": reading.ID,
		"alerts":     alertCount,
		"prediction": reading.Prediction,
	})
}

func readingFromRequest(req *ingestRequest) *models.SpectralReading {
	ts := time.Now().UTC()
	if req.TimestampMS > 0 {
		ts = time.UnixMilli(req.TimestampMS).UTC()
	}
	return &models.SpectralReading{
		DeviceID:        req.DeviceID,
		Timestamp:       ts,
		VOCRaw:          req.VOCRaw,
		VOCVoltage:      req.VOCVoltage,
		LEDMode:         req.LEDMode,
		RawChannels:     req.RawChannels,
		ReflectChannels: req.ReflectChannels,
		AbsChannels:     req.AbsChannels,
		CFUEstimate:     req.CFUEstimate,
	}
}

// processReading runs the shared ingest pipeline. The reading must already
// carry its Features block; alerts are scoped to the ingesting user. Returns
// the number of alerts raised.
func processReading(c *gin.Context, user *models.User, reading *models.SpectralReading) (int, error) {
	device, err := config.Store.DeviceByID(reading.DeviceID)
	if err != nil {
		// Auto-register unknown devices with default thresholds.
		device = &models.Device{
			DeviceID: reading.DeviceID,
			Name:     reading.DeviceID,
			Status:   models.StatusSyncing,
			Settings: models.DefaultAlertSettings(),
		}
	}

	vector := reading.Features.Vector(reading.VOCVoltage, reading.VOCRaw, reading.CFUEstimate)
	resp, err := ML.Predict(c.Request.Context(), vector, reading.DeviceID, reading.Timestamp.UnixMilli())
	if err != nil {
		logrus.WithError(err).WithField("device_id", reading.DeviceID).
			Warn("prediction failed, storing reading without prediction")
		device.Status = models.StatusSyncing
	} else {
		reading.Prediction = &models.Prediction{
			FreshnessScore: resp.FreshnessPrediction,
			Category:       spectral.CategoryForScore(resp.FreshnessPrediction),
			ShelfLifeHours: resp.ShelfLifeHours,
			Confidence:     resp.Confidence,
			ModelAccuracy:  resp.ModelAccuracy,
		}
		device.Status = models.StatusOnline
	}

	alerts := utils.EvaluateAlerts(device, reading)
	if reading.Prediction != nil {
		reading.Prediction.RiskLevel = utils.RiskLevel(reading.Prediction.Category, alerts)
	}

	if err := config.Store.CreateReading(reading); err != nil {
		return 0, err
	}

	device.LastSeen = reading.Timestamp
	if err := config.Store.UpsertDevice(device); err != nil {
		logrus.WithError(err).WithField("device_id", device.DeviceID).Error("failed to update device")
	}

	for i := range alerts {
		alerts[i].ReadingID = reading.ID
		alerts[i].UserID = user.ID
		if err := config.Store.CreateAlert(&alerts[i]); err != nil {
			logrus.WithError(err).Error("failed to store alert")
			continue
		}
		BroadcastAlert(&alerts[i])
	}
	BroadcastReading(reading)

	return len(alerts), nil
}

// readingFilterFromQuery builds the store filter from query parameters,
// applying ownership scoping for non-admin users.
func readingFilterFromQuery(c *gin.Context, user *models.User) (store.ReadingFilter, bool) {
	f := store.ReadingFilter{Limit: 100}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return f, false
		}
		f.Limit = n
	}
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return f, false
		}
		f.Since = &t
	}
	if v := c.Query("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "until must be RFC3339"})
			return f, false
		}
		f.Until = &t
	}

	f.DeviceID = c.Query("device_id")
	if f.DeviceID != "" && !user.CanSeeDevice(f.DeviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return f, false
	}
	f.DeviceIDs = scopedDeviceIDs(user)
	return f, true
}

// GetReadings returns reading history, newest first.
func GetReadings(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	f, ok := readingFilterFromQuery(c, user)
	if !ok {
		return
	}

	readings, err := config.Store.Readings(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch readings"})
		return
	}
	c.JSON(http.StatusOK, readings)
}

// GetLatestReading returns the most recent reading for one device.
func GetLatestReading(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id is required"})
		return
	}
	if !user.CanSeeDevice(deviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	reading, err := config.Store.LatestReading(deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No readings for device"})
		return
	}
	c.JSON(http.StatusOK, reading)
}

// UpdateReading edits the mutable fields of a stored reading.
func UpdateReading(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reading ID"})
		return
	}

	reading, err := config.Store.ReadingByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reading not found"})
		return
	}
	if !user.CanSeeDevice(reading.DeviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	var input struct {
		VOCRaw      *float64 `json:"voc_raw"`
		VOCVoltage  *float64 `json:"voc_voltage"`
		CFUEstimate *float64 `json:"cfu_estimate"`
		LEDMode     *string  `json:"led_mode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if input.VOCRaw != nil {
		reading.VOCRaw = *input.VOCRaw
	}
	if input.VOCVoltage != nil {
		reading.VOCVoltage = *input.VOCVoltage
	}
	if input.CFUEstimate != nil {
		reading.CFUEstimate = *input.CFUEstimate
	}
	if input.LEDMode != nil {
		reading.LEDMode = *input.LEDMode
	}

	if err := config.Store.UpdateReading(reading); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reading updated successfully", "updated_reading": reading})
}

// DeleteReading removes a single reading.
func DeleteReading(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reading ID"})
		return
	}

	reading, err := config.Store.ReadingByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reading not found"})
		return
	}
	if !user.CanSeeDevice(reading.DeviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	if err := config.Store.DeleteReading(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reading deleted successfully"})
}

// DeleteAllReadings wipes the reading history (admin only).
func DeleteAllReadings(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to delete all readings"})
		return
	}

	if err := config.Store.DeleteAllReadings(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete readings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All readings deleted successfully"})
}

// ExportCSV streams readings in the device CSV line format.
func ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	f, ok := readingFilterFromQuery(c, user)
	if !ok {
		return
	}
	f.Limit = 0 // export everything in scope

	readings, err := config.Store.Readings(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch readings"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=spectral_readings.csv")
	fmt.Fprintln(c.Writer, "# LACTEVA export")
	fmt.Fprintln(c.Writer, "# Format: CSV,timestamp_ms,VOC_raw,VOC_voltage,LED_Mode,raw_ch0-11,reflect_ch0-11,abs_ch0-11,CFU_est")
	for i := range readings {
		fmt.Fprintln(c.Writer, spectral.FormatCSVLine(recordFromReading(&readings[i])))
	}
}

func recordFromReading(r *models.SpectralReading) *spectral.Record {
	return &spectral.Record{
		TimestampMS: r.Timestamp.UnixMilli(),
		VOCRaw:      r.VOCRaw,
		VOCVoltage:  r.VOCVoltage,
		LEDMode:     r.LEDMode,
		Raw:         r.RawChannels,
		Reflect:     r.ReflectChannels,
		Abs:         r.AbsChannels,
		CFUEstimate: r.CFUEstimate,
	}
}

// ImportCSV ingests device CSV lines from a multipart upload. Each valid line
// goes through the full ingest pipeline; malformed lines are counted and
// skipped.
func ImportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	deviceID := c.PostForm("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id is required"})
		return
	}
	if !user.CanSeeDevice(deviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	file, _, err := c.Request.FormFile("csv_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv_file is required"})
		return
	}
	defer file.Close()

	var accepted, rejected int
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		rec, err := spectral.ParseCSVLine(line)
		if err != nil {
			rejected++
			continue
		}

		// Devices with an unset clock send timestamp_ms 0; stamp arrival
		// time, same as the JSON ingest path.
		ts := time.Now().UTC()
		if rec.TimestampMS > 0 {
			ts = time.UnixMilli(rec.TimestampMS).UTC()
		}

		reading := &models.SpectralReading{
			DeviceID:        deviceID,
			Timestamp:       ts,
			VOCRaw:          rec.VOCRaw,
			VOCVoltage:      rec.VOCVoltage,
			LEDMode:         rec.LEDMode,
			RawChannels:     rec.Raw,
			ReflectChannels: rec.Reflect,
			AbsChannels:     rec.Abs,
			CFUEstimate:     rec.CFUEstimate,
		}
		features, err := spectral.ComputeFeatures(rec.Raw, rec.Reflect, rec.Abs)
		if err != nil {
			rejected++
			continue
		}
		reading.Features = features

		if _, err := processReading(c, user, reading); err != nil {
			rejected++
			continue
		}
		accepted++
	}
	if err := scanner.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Import complete",
		"accepted": accepted,
		"rejected": rejected,
	})
}
