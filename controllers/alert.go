package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/keerthana1830/Lacteva/config"
	"github.com/keerthana1830/Lacteva/store"
)

// GetAlerts lists alerts visible to the caller, newest first.
func GetAlerts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	f := store.AlertFilter{Limit: 200}
	f.DeviceID = c.Query("device_id")
	if f.DeviceID != "" && !user.CanSeeDevice(f.DeviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}
	f.DeviceIDs = scopedDeviceIDs(user)

	if v := c.Query("acknowledged"); v != "" {
		ack, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "acknowledged must be true or false"})
			return
		}
		f.Acknowledged = &ack
	}

	alerts, err := config.Store.Alerts(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// GetAlertCount returns the number of unacknowledged alerts in scope.
func GetAlertCount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := config.Store.CountUnacknowledged(scopedDeviceIDs(user))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// AcknowledgeAlert marks an alert as seen.
func AcknowledgeAlert(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	alert, err := config.Store.AlertByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}
	if !user.CanSeeDevice(alert.DeviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for device"})
		return
	}

	if err := config.Store.AcknowledgeAlert(uint(id), time.Now().UTC()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to acknowledge alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert acknowledged"})
}
