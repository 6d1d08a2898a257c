package signaling

import (
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Hub implements Transport over live WebSocket clients. It tracks every
// connection and the room groups they have joined; delivery goes through
// each client's buffered send channel so a slow reader never blocks the
// router.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]struct{} // room id -> member conn ids
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]struct{}),
	}
}

// Add registers a connected client under its connection id.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Remove drops the client and clears it out of every group.
func (h *Hub) Remove(conn string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	for _, members := range h.groups {
		delete(members, conn)
	}
}

func (h *Hub) Join(roomID, conn string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[roomID]
	if !ok {
		members = make(map[string]struct{})
		h.groups[roomID] = members
	}
	members[conn] = struct{}{}
}

func (h *Hub) Leave(roomID, conn string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.groups[roomID]; ok {
		delete(members, conn)
	}
}

// CloseRoom discards the whole group. Members' connections stay alive;
// they just no longer receive that room's broadcasts.
func (h *Hub) CloseRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, roomID)
}

// Emit sends one event to one connection. Unknown targets are logged and
// dropped.
func (h *Hub) Emit(conn, event string, payload any) {
	data, err := marshal(event, payload)
	if err != nil {
		return
	}

	h.mu.RLock()
	client, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		log.WithFields(log.Fields{"conn": conn, "event": event}).Debug("emit target not connected")
		return
	}
	client.enqueue(data)
}

// Broadcast sends one event to every member of the room's group,
// including the host.
func (h *Hub) Broadcast(roomID, event string, payload any) {
	data, err := marshal(event, payload)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.groups[roomID] {
		if client, ok := h.clients[conn]; ok {
			client.enqueue(data)
		}
	}
}

func marshal(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.WithFields(log.Fields{"event": event}).Errorf("failed to marshal payload: %v", err)
			return nil, err
		}
		env.Data = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		log.WithFields(log.Fields{"event": event}).Errorf("failed to marshal envelope: %v", err)
		return nil, err
	}
	return data, nil
}
