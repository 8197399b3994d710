package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keerthana1830/Lacteva/config"
	"github.com/keerthana1830/Lacteva/mlclient"
	"github.com/keerthana1830/Lacteva/models"
)

// ML is the inference service client, set during startup.
var ML *mlclient.Client

// currentUser resolves the authenticated user from the JWT claims stored by
// the auth middleware. Writes a 401 response and returns false on failure.
func currentUser(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	var id uint
	switch v := raw.(type) {
	case float64:
		id = uint(v)
	case uint:
		id = v
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID type"})
		return nil, false
	}

	user, err := config.Store.UserByID(id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return nil, false
	}
	return user, true
}

// scopedDeviceIDs returns the device restriction for store filters: nil for
// admins (unrestricted), otherwise the user's device list. An empty non-nil
// list matches nothing.
func scopedDeviceIDs(u *models.User) []string {
	if u.IsAdmin() {
		return nil
	}
	ids := []string(u.Devices)
	if ids == nil {
		ids = []string{}
	}
	return ids
}
