package controller

import (
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/dietprefs-client/internal/middleware"
	ws "github.com/ikkim/dietprefs-client/internal/websocket"
)

type StreamController struct {
	hub      *ws.Hub
	upgrader gorillaws.Upgrader
}

func NewStreamController(hub *ws.Hub, allowedOrigins []string) *StreamController {
	return &StreamController{
		hub:      hub,
		upgrader: ws.NewUpgrader(allowedOrigins),
	}
}

// WebSocketHandler streams session and detail snapshots to a UI
// GET /ws
func (ctrl *StreamController) WebSocketHandler(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, conn)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"client_id": client.ID,
	})
}
