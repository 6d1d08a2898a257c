package signaling

import (
	"encoding/json"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/castrelay/signaling/internal/presence"
	"github.com/castrelay/signaling/internal/registry"
)

// Transport is the event channel the router relays over: it can emit a
// named event to one connection, broadcast to every connection in a
// room's group, and manage group membership. The WebSocket hub is the
// production implementation; tests substitute a recorder.
type Transport interface {
	Emit(conn, event string, payload any)
	Broadcast(roomID, event string, payload any)
	Join(roomID, conn string)
	Leave(roomID, conn string)
	CloseRoom(roomID string)
}

const (
	errRoomNotFound   = "Room not found"
	errRoomExists     = "Room already exists"
	errAlreadyHosting = "You are already hosting a room"
	errNotSameNetwork = "You can only join rooms from the same local network"
)

// Router owns the signaling logic for every connection: it mutates the
// room registry on lifecycle events and relays negotiation messages
// between peers. One router instance serves the whole process.
type Router struct {
	reg            *registry.Registry
	transport      Transport
	mirror         *presence.Mirror
	sameSubnetOnly bool
}

func NewRouter(reg *registry.Registry, t Transport, mirror *presence.Mirror, sameSubnetOnly bool) *Router {
	return &Router{
		reg:            reg,
		transport:      t,
		mirror:         mirror,
		sameSubnetOnly: sameSubnetOnly,
	}
}

// Connect records a new connection and the client address the join
// policy will judge it by.
func (r *Router) Connect(conn, addr string) {
	r.reg.Register(conn, addr)
	log.WithFields(log.Fields{"conn": conn, "addr": addr}).Info("connection established")
}

// Disconnect reclaims everything tied to the connection. A host
// disconnect deletes its room and tells the whole group; a viewer
// disconnect tells the host. Safe to call more than once.
func (r *Router) Disconnect(conn string) {
	removal, ok := r.reg.RemoveConnection(conn)
	if !ok {
		return
	}

	if removal.WasHost {
		r.transport.Broadcast(removal.RoomID, EventHostDisconnected, nil)
		r.transport.CloseRoom(removal.RoomID)
		r.mirror.RoomClosed(removal.RoomID)
		log.WithFields(log.Fields{"room": removal.RoomID, "conn": conn}).Info("host disconnected, room closed")
		return
	}

	r.transport.Emit(removal.Host, EventViewerLeft, conn)
	r.transport.Leave(removal.RoomID, conn)
	r.mirror.PeerLeft(removal.RoomID, conn)
	log.WithFields(log.Fields{"room": removal.RoomID, "conn": conn}).Info("viewer disconnected")
}

// HandleEvent dispatches one inbound envelope from conn. Payloads are
// assumed well-formed by the transport layer; anything that fails to
// decode is dropped with a log line.
func (r *Router) HandleEvent(conn string, env Envelope) {
	switch env.Event {
	case EventCreateRoom:
		var roomID string
		if !decode(env, &roomID) {
			return
		}
		r.createRoom(conn, roomID)
	case EventJoinRoom:
		var roomID string
		if !decode(env, &roomID) {
			return
		}
		r.joinRoom(conn, roomID)
	case EventViewerJoined:
		var p RoomPayload
		if !decode(env, &p) {
			return
		}
		r.viewerReady(conn, p.RoomID)
	case EventStartScreenShare:
		var p RoomPayload
		if !decode(env, &p) {
			return
		}
		r.reg.SetSharing(p.RoomID, true)
	case EventStopScreenShare:
		var p RoomPayload
		if !decode(env, &p) {
			return
		}
		r.reg.SetSharing(p.RoomID, false)
		r.transport.Broadcast(p.RoomID, EventHostStoppedSharing, nil)
	case EventOffer:
		var p OfferPayload
		if !decode(env, &p) {
			return
		}
		r.transport.Emit(p.To, EventOffer, OfferPayload{From: conn, Offer: p.Offer})
	case EventAnswer:
		var p AnswerPayload
		if !decode(env, &p) {
			return
		}
		r.transport.Emit(p.To, EventAnswer, AnswerPayload{From: conn, Answer: p.Answer})
	case EventICECandidate:
		var p CandidatePayload
		if !decode(env, &p) {
			return
		}
		r.relayCandidate(conn, p)
	default:
		log.WithFields(log.Fields{"conn": conn, "event": env.Event}).Warn("unknown event")
	}
}

func (r *Router) createRoom(conn, roomID string) {
	addr, _ := r.reg.Addr(conn)
	_, left, err := r.reg.CreateRoom(roomID, conn, addr)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrRoomExists):
			r.transport.Emit(conn, EventError, errRoomExists)
		case errors.Is(err, registry.ErrHostingRoom):
			r.transport.Emit(conn, EventError, errAlreadyHosting)
		default:
			r.transport.Emit(conn, EventError, err.Error())
		}
		return
	}
	r.notifyLeft(conn, left)
	r.transport.Join(roomID, conn)
	r.transport.Emit(conn, EventRoomCreated, roomID)
	r.mirror.RoomOpened(roomID, conn)
	log.WithFields(log.Fields{"room": roomID, "host": conn}).Info("room created")
}

func (r *Router) joinRoom(conn, roomID string) {
	room, ok := r.reg.Room(roomID)
	if !ok {
		r.transport.Emit(conn, EventError, errRoomNotFound)
		return
	}

	if r.sameSubnetOnly {
		addr, _ := r.reg.Addr(conn)
		if !sameLocalNetwork(room.HostAddr, addr) {
			r.transport.Emit(conn, EventError, errNotSameNetwork)
			log.WithFields(log.Fields{"room": roomID, "conn": conn, "addr": addr}).Info("join rejected by local-network policy")
			return
		}
	}

	left, err := r.reg.AddViewer(roomID, conn)
	if err != nil {
		if errors.Is(err, registry.ErrHostingRoom) {
			r.transport.Emit(conn, EventError, errAlreadyHosting)
			return
		}
		r.transport.Emit(conn, EventError, errRoomNotFound)
		return
	}
	r.notifyLeft(conn, left)
	r.transport.Join(roomID, conn)
	r.transport.Emit(conn, EventRoomJoined, roomID)
	// Re-read the sharing flag now that the viewer is a member: a share
	// starting between the policy snapshot and AddViewer must not be
	// missed. Late joiners learn about an in-progress session here
	// rather than by polling.
	if current, ok := r.reg.Room(roomID); ok && current.Sharing {
		r.transport.Emit(conn, EventHostIsSharing, RoomPayload{RoomID: roomID})
	}
	r.mirror.PeerJoined(roomID, conn)
	log.WithFields(log.Fields{"room": roomID, "viewer": conn}).Info("viewer joined room")
}

// notifyLeft tells a room's host that a viewer walked off to another
// room, mirroring what a disconnect would have told it.
func (r *Router) notifyLeft(conn string, left *registry.Removal) {
	if left == nil {
		return
	}
	r.transport.Emit(left.Host, EventViewerLeft, conn)
	r.transport.Leave(left.RoomID, conn)
	r.mirror.PeerLeft(left.RoomID, conn)
	log.WithFields(log.Fields{"room": left.RoomID, "conn": conn}).Info("viewer moved to another room")
}

// viewerReady fires once a viewer's transport is ready to negotiate: the
// host learns the viewer's connection id and initiates an offer to it.
func (r *Router) viewerReady(conn, roomID string) {
	room, ok := r.reg.Room(roomID)
	if !ok {
		log.WithFields(log.Fields{"room": roomID, "conn": conn}).Warn("viewerJoined for unknown room")
		return
	}
	r.transport.Emit(room.Host, EventNewViewer, conn)
}

// relayCandidate forwards an ICE candidate. A "host" target is resolved
// through the sender's room membership; candidates whose target cannot
// be resolved are dropped, since the sender can do nothing useful with a
// failure.
func (r *Router) relayCandidate(conn string, p CandidatePayload) {
	to := p.To
	if to == RoleHost {
		room, ok := r.reg.RoomOf(conn)
		if !ok || room.Host == conn {
			// Only viewers can address the host by role.
			log.WithFields(log.Fields{"conn": conn}).Debug("dropping candidate: no host to resolve")
			return
		}
		to = room.Host
	}
	r.transport.Emit(to, EventICECandidate, CandidatePayload{From: conn, Candidate: p.Candidate})
}

func decode(env Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		log.WithFields(log.Fields{"event": env.Event}).Warnf("failed to parse payload: %v", err)
		return false
	}
	return true
}
