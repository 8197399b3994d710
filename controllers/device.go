package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/keerthana1830/Lacteva/config"
	"github.com/keerthana1830/Lacteva/models"
)

// ListDevices returns the devices visible to the caller.
func ListDevices(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	devices, err := config.Store.Devices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch devices"})
		return
	}

	if !user.IsAdmin() {
		visible := devices[:0]
		for _, d := range devices {
			if user.Devices.Contains(d.DeviceID) {
				visible = append(visible, d)
			}
		}
		devices = visible
	}
	c.JSON(http.StatusOK, devices)
}

// GetDevice returns one device.
func GetDevice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	deviceID := c.Param("id")
	if !user.CanSeeDevice(deviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	device, err := config.Store.DeviceByID(deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	c.JSON(http.StatusOK, device)
}

type deviceRequest struct {
	DeviceID        string `json:"device_id" binding:"required"`
	Name            string `json:"name"`
	Location        string `json:"location"`
	FirmwareVersion string `json:"firmware_version"`
}

// CreateDevice registers a device (admin and lab technicians).
func CreateDevice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user.Role == models.RoleFieldOp {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if _, err := config.Store.DeviceByID(req.DeviceID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Device already exists"})
		return
	}

	device := &models.Device{
		DeviceID:        req.DeviceID,
		Name:            req.Name,
		Location:        req.Location,
		FirmwareVersion: req.FirmwareVersion,
		Status:          models.StatusOffline,
		Settings:        models.DefaultAlertSettings(),
	}
	if device.Name == "" {
		device.Name = device.DeviceID
	}

	if err := config.Store.UpsertDevice(device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create device"})
		return
	}
	c.JSON(http.StatusCreated, device)
}

// UpdateDevice edits device metadata.
func UpdateDevice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	deviceID := c.Param("id")
	if !user.CanSeeDevice(deviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	device, err := config.Store.DeviceByID(deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}

	var input struct {
		Name            *string `json:"name"`
		Location        *string `json:"location"`
		FirmwareVersion *string `json:"firmware_version"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if input.Name != nil {
		device.Name = *input.Name
	}
	if input.Location != nil {
		device.Location = *input.Location
	}
	if input.FirmwareVersion != nil {
		device.FirmwareVersion = *input.FirmwareVersion
	}

	if err := config.Store.UpsertDevice(device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update device"})
		return
	}
	c.JSON(http.StatusOK, device)
}

// DeleteDevice removes a device (admin only).
func DeleteDevice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can delete devices"})
		return
	}

	deviceID := c.Param("id")
	if _, err := config.Store.DeviceByID(deviceID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}

	if err := config.Store.DeleteDevice(deviceID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete device"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device deleted successfully"})
}

// UpdateThresholds replaces a device's alert thresholds.
func UpdateThresholds(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	deviceID := c.Param("id")
	if !user.CanSeeDevice(deviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	device, err := config.Store.DeviceByID(deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}

	var settings models.AlertSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if settings.VOCWarn > settings.VOCCrit || settings.CFUWarn > settings.CFUCrit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Warning thresholds must not exceed critical thresholds"})
		return
	}

	device.Settings = settings
	if err := config.Store.UpsertDevice(device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update thresholds"})
		return
	}
	c.JSON(http.StatusOK, device)
}

// CalibrateDevice stamps a calibration and cycles the device through syncing.
func CalibrateDevice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user.Role == models.RoleFieldOp {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	deviceID := c.Param("id")
	device, err := config.Store.DeviceByID(deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}

	now := time.Now().UTC()
	device.CalibratedAt = &now
	device.Status = models.StatusSyncing
	if err := config.Store.UpsertDevice(device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calibrate device"})
		return
	}

	logrus.WithField("device_id", deviceID).Info("device calibrated")
	c.JSON(http.StatusOK, gin.H{"message": "Calibration recorded", "calibrated_at": now})
}

// SweepOfflineDevices flips devices silent past the deadline to offline.
// Invoked from the cron schedule in main.
func SweepOfflineDevices() {
	deadline := time.Now().Add(-config.C.OfflineAfter)
	flipped, err := config.Store.MarkStaleOffline(deadline)
	if err != nil {
		logrus.WithError(err).Error("offline sweep failed")
		return
	}
	if flipped > 0 {
		logrus.WithField("count", flipped).Info("devices marked offline")
	}
}
