package controllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/keerthana1830/Lacteva/config"
	"github.com/keerthana1830/Lacteva/models"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	conn    *websocket.Conn
	userID  uint
	admin   bool
	devices models.StringList
}

var (
	wsMu      sync.Mutex
	wsClients = make(map[*websocket.Conn]*wsClient)
)

// HandleWebSocket upgrades the connection and registers the client for live
// reading and alert pushes scoped to the devices the user can see.
func HandleWebSocket(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := &wsClient{
		conn:    conn,
		userID:  user.ID,
		admin:   user.IsAdmin(),
		devices: user.Devices,
	}

	wsMu.Lock()
	wsClients[conn] = client
	wsMu.Unlock()

	defer func() {
		wsMu.Lock()
		delete(wsClients, conn)
		wsMu.Unlock()
		conn.Close()
	}()

	// Drain until the client disconnects; pushes happen from the ingest path.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (cl *wsClient) canSee(deviceID string) bool {
	return cl.admin || cl.devices.Contains(deviceID)
}

func broadcast(deviceID string, payload interface{}) {
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}

	// Snapshot the recipients so a stalled connection cannot hold the lock
	// against the ingest path.
	wsMu.Lock()
	targets := make([]*wsClient, 0, len(wsClients))
	for _, cl := range wsClients {
		if cl.canSee(deviceID) {
			targets = append(targets, cl)
		}
	}
	wsMu.Unlock()

	for _, cl := range targets {
		cl.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

// BroadcastReading pushes a freshly ingested reading to connected dashboards.
func BroadcastReading(reading *models.SpectralReading) {
	broadcast(reading.DeviceID, gin.H{"type": "reading", "data": reading})
}

// BroadcastAlert pushes a new alert with the current unacknowledged count.
func BroadcastAlert(alert *models.Alert) {
	count, _ := config.Store.CountUnacknowledged(nil)
	broadcast(alert.DeviceID, gin.H{
		"type":        "alert",
		"data":        alert,
		"alert_count": count,
	})
}
