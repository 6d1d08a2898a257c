package signaling

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Client is one live WebSocket connection. The hub writes into Send;
// writePump drains it onto the wire.
type Client struct {
	ID   string
	Addr string
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(id, addr string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Addr: addr,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}

func (c *Client) enqueue(data []byte) {
	select {
	case c.Send <- data:
	default:
		log.WithFields(log.Fields{"conn": c.ID}).Warn("send buffer full, dropping event")
	}
}

// ReadPump consumes inbound frames and hands each envelope to the
// router. On any read failure it tears the connection down through the
// normal disconnect path.
func (c *Client) ReadPump(hub *Hub, router *Router) {
	// Send is deliberately never closed: the hub may still be routing
	// an event at this instant, and a write to a closed channel would
	// panic. writePump exits on its own once the connection is gone.
	defer func() {
		hub.Remove(c.ID)
		router.Disconnect(c.ID)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithFields(log.Fields{"conn": c.ID}).Warnf("websocket error: %v", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.WithFields(log.Fields{"conn": c.ID}).Warnf("failed to parse message: %v", err)
			continue
		}
		router.HandleEvent(c.ID, env)
	}
}

// WritePump drains the send channel onto the wire and keeps the
// connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.WithFields(log.Fields{"conn": c.ID}).Debugf("failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
