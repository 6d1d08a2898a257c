package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/castrelay/signaling/internal/signaling"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by the origin filter middleware.
		return true
	},
}

// Signaling upgrades the request to a WebSocket and attaches it to the
// hub and router. Each connection gets a fresh server-assigned id,
// never reused after disconnect.
func Signaling(hub *signaling.Hub, router *signaling.Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warnf("failed to upgrade connection: %v", err)
			return
		}

		connID := uuid.New().String()
		addr := c.ClientIP()

		client := signaling.NewClient(connID, addr, conn)
		hub.Add(client)
		router.Connect(connID, addr)

		go client.WritePump()
		go client.ReadPump(hub, router)
	}
}
