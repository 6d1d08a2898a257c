package registry

import (
	"errors"
	"sync"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrHostingRoom  = errors.New("connection is hosting another room")
)

// Room is a snapshot of one sharing session. The host is fixed at
// creation; viewers come and go without affecting room existence.
type Room struct {
	ID       string
	Host     string
	HostAddr string
	Viewers  []string
	Sharing  bool
}

type room struct {
	id       string
	host     string
	hostAddr string
	viewers  map[string]struct{}
	sharing  bool
}

func (r *room) snapshot() Room {
	viewers := make([]string, 0, len(r.viewers))
	for v := range r.viewers {
		viewers = append(viewers, v)
	}
	return Room{
		ID:       r.id,
		Host:     r.host,
		HostAddr: r.hostAddr,
		Viewers:  viewers,
		Sharing:  r.sharing,
	}
}

// Registry is the in-memory table of live rooms. It also keeps a reverse
// index from connection id to room id so role-token routing ("to: host")
// does not scan every room, and a connection→address map for the join
// policy. All state is volatile and scoped to the process lifetime.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*room
	memberRoom map[string]string // conn id -> room id (host or viewer)
	addrs      map[string]string // conn id -> client network address
}

func New() *Registry {
	return &Registry{
		rooms:      make(map[string]*room),
		memberRoom: make(map[string]string),
		addrs:      make(map[string]string),
	}
}

// Register records a connection's client address. Called once when the
// connection is established; RemoveConnection releases it.
func (reg *Registry) Register(conn, addr string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.addrs[conn] = addr
}

// Addr returns the client address recorded for a live connection.
func (reg *Registry) Addr(conn string) (string, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	addr, ok := reg.addrs[conn]
	return addr, ok
}

// detachLocked releases conn's current viewer membership, if any, so the
// connection can enter another room: a connection appears as host or
// viewer in at most one room at a time. A connection that hosts a room
// cannot be detached this way; its room only goes away on disconnect.
func (reg *Registry) detachLocked(conn string) (*Removal, error) {
	prevID, ok := reg.memberRoom[conn]
	if !ok {
		return nil, nil
	}
	prev, ok := reg.rooms[prevID]
	if !ok {
		delete(reg.memberRoom, conn)
		return nil, nil
	}
	if prev.host == conn {
		return nil, ErrHostingRoom
	}
	delete(prev.viewers, conn)
	delete(reg.memberRoom, conn)
	return &Removal{RoomID: prevID, Host: prev.host}, nil
}

// CreateRoom inserts a room with the given host and an empty viewer set.
// Creation is rejected when the id is already live, so an existing room's
// members can never be silently orphaned by a colliding create, and when
// the creator already hosts a room. A creator that was viewing another
// room is detached from it; the returned Removal describes that
// membership so the caller can notify the abandoned room's host.
func (reg *Registry) CreateRoom(roomID, host, hostAddr string) (Room, *Removal, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.rooms[roomID]; exists {
		return Room{}, nil, ErrRoomExists
	}
	left, err := reg.detachLocked(host)
	if err != nil {
		return Room{}, nil, err
	}

	r := &room{
		id:       roomID,
		host:     host,
		hostAddr: hostAddr,
		viewers:  make(map[string]struct{}),
	}
	reg.rooms[roomID] = r
	reg.memberRoom[host] = roomID
	return r.snapshot(), left, nil
}

// Room returns a snapshot of the room, if it exists.
func (reg *Registry) Room(roomID string) (Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[roomID]
	if !ok {
		return Room{}, false
	}
	return r.snapshot(), true
}

// AddViewer adds the connection to the room's viewer set. Adding the
// room's own host is a no-op, and re-adding a viewer is idempotent. A
// viewer arriving from another room is detached from it first, keeping
// membership single-room; the returned Removal describes the abandoned
// membership so the caller can notify that room's host. A connection
// hosting a room elsewhere is rejected with ErrHostingRoom.
func (reg *Registry) AddViewer(roomID, viewer string) (*Removal, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if viewer == r.host {
		return nil, nil
	}
	if reg.memberRoom[viewer] == roomID {
		return nil, nil
	}
	left, err := reg.detachLocked(viewer)
	if err != nil {
		return nil, err
	}
	r.viewers[viewer] = struct{}{}
	reg.memberRoom[viewer] = roomID
	return left, nil
}

// SetSharing flips the room's sharing flag. Missing rooms are ignored.
func (reg *Registry) SetSharing(roomID string, sharing bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.rooms[roomID]; ok {
		r.sharing = sharing
	}
}

// RoomOf resolves the room a connection currently belongs to, as host or
// viewer. This is the reverse index behind "to: host" candidate routing.
func (reg *Registry) RoomOf(conn string) (Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	roomID, ok := reg.memberRoom[conn]
	if !ok {
		return Room{}, false
	}
	r, ok := reg.rooms[roomID]
	if !ok {
		return Room{}, false
	}
	return r.snapshot(), true
}

// Removal describes what RemoveConnection actually removed, so the
// router can emit the right notifications.
type Removal struct {
	RoomID  string
	WasHost bool
	Host    string // room host at removal time, for viewerLeft delivery
}

// RemoveConnection reclaims all state tied to a connection. If it hosted
// a room the room is deleted outright; if it was viewing, only the viewer
// entry goes. Duplicate calls for the same connection find nothing and
// return ok=false, so out-of-order disconnect signals cannot
// double-notify.
func (reg *Registry) RemoveConnection(conn string) (Removal, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.addrs, conn)

	roomID, ok := reg.memberRoom[conn]
	if !ok {
		return Removal{}, false
	}
	delete(reg.memberRoom, conn)

	r, ok := reg.rooms[roomID]
	if !ok {
		return Removal{}, false
	}

	if r.host == conn {
		for v := range r.viewers {
			delete(reg.memberRoom, v)
		}
		delete(reg.rooms, roomID)
		return Removal{RoomID: roomID, WasHost: true}, true
	}

	delete(r.viewers, conn)
	return Removal{RoomID: roomID, Host: r.host}, true
}

// Rooms returns snapshots of every live room.
func (reg *Registry) Rooms() []Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		out = append(out, r.snapshot())
	}
	return out
}
