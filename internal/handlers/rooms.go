package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/castrelay/signaling/internal/registry"
)

// RoomStats is the operator-facing view of one live room. Connection
// ids are opaque, so exposing them leaks nothing useful to an operator
// beyond cardinality.
type RoomStats struct {
	RoomID      string `json:"roomId"`
	ViewerCount int    `json:"viewerCount"`
	Sharing     bool   `json:"sharing"`
}

func stats(r registry.Room) RoomStats {
	return RoomStats{
		RoomID:      r.ID,
		ViewerCount: len(r.Viewers),
		Sharing:     r.Sharing,
	}
}

// ListRooms returns stats for every live room.
func ListRooms(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		rooms := reg.Rooms()
		out := make([]RoomStats, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, stats(r))
		}
		c.JSON(http.StatusOK, gin.H{"rooms": out})
	}
}

// GetRoom returns stats for one room.
func GetRoom(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, ok := reg.Room(c.Param("roomId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusOK, stats(room))
	}
}
