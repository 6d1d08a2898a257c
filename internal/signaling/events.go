package signaling

import "encoding/json"

// Inbound event names (client -> server).
const (
	EventCreateRoom       = "createRoom"
	EventJoinRoom         = "joinRoom"
	EventViewerJoined     = "viewerJoined"
	EventStartScreenShare = "startScreenShare"
	EventStopScreenShare  = "stopScreenShare"
	EventOffer            = "offer"
	EventAnswer           = "answer"
	EventICECandidate     = "iceCandidate"
)

// Outbound event names (server -> client).
const (
	EventRoomCreated        = "roomCreated"
	EventRoomJoined         = "roomJoined"
	EventError              = "error"
	EventHostIsSharing      = "hostIsSharing"
	EventNewViewer          = "newViewer"
	EventHostStoppedSharing = "hostStoppedSharing"
	EventHostDisconnected   = "hostDisconnected"
	EventViewerLeft         = "viewerLeft"
)

// RoleHost is the role token viewers may use as an iceCandidate target
// before they have learned the host's connection id.
const RoleHost = "host"

// Envelope is the wire frame for every signaling message in both
// directions: a named event plus its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomPayload carries events whose payload is an object with a room id
// (viewerJoined, startScreenShare, stopScreenShare, hostIsSharing).
type RoomPayload struct {
	RoomID string `json:"roomID"`
}

// OfferPayload is the inbound shape for offer and answer relays. The
// server overwrites From with the sender's connection id before
// forwarding; the SDP body is relayed verbatim.
type OfferPayload struct {
	To    string          `json:"to"`
	From  string          `json:"from,omitempty"`
	Offer json.RawMessage `json:"offer,omitempty"`
}

type AnswerPayload struct {
	To     string          `json:"to"`
	From   string          `json:"from,omitempty"`
	Answer json.RawMessage `json:"answer,omitempty"`
}

// CandidatePayload is the inbound shape for iceCandidate relays. To may
// be the literal token "host".
type CandidatePayload struct {
	To        string          `json:"to"`
	From      string          `json:"from,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}
