package signaling

import "encoding/json"

// Message types carried over the signaling socket, one JSON envelope per
// frame. SDP descriptors, ICE candidates and stats blobs are opaque to the
// relay and forwarded verbatim.
const (
	TypeJoin         = "join"
	TypeRoomInfo     = "room-info"
	TypeUserJoined   = "user-joined"
	TypeUserLeft     = "user-left"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"
	TypePing         = "ping"
	TypePong         = "pong"
	TypeStats        = "stats"
	TypeStatsUpdate  = "stats-update"
)

// Envelope is the superset of all inbound frame shapes. On offer, answer and
// ice-candidate frames the userId field names the target peer on receipt and
// is rewritten to the sender's id before the frame is relayed.
type Envelope struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Username  string          `json:"username,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Stats     json.RawMessage `json:"stats,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// Outbound payload structs

type RoomInfo struct {
	Type      string   `json:"type"`
	Users     []string `json:"users"`
	RoomID    string   `json:"roomId"`
	Timestamp int64    `json:"timestamp"`
}

type Presence struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	Username  string `json:"username,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type Pong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Latency   int64  `json:"latency"`
}

type StatsUpdate struct {
	Type      string          `json:"type"`
	UserID    string          `json:"userId"`
	Stats     json.RawMessage `json:"stats"`
	Timestamp int64           `json:"timestamp"`
}

func NewRoomInfo(roomID string, users []string, now int64) RoomInfo {
	if users == nil {
		users = []string{}
	}
	return RoomInfo{
		Type:      TypeRoomInfo,
		Users:     users,
		RoomID:    roomID,
		Timestamp: now,
	}
}

func NewUserJoined(userID, username string, now int64) Presence {
	return Presence{
		Type:      TypeUserJoined,
		UserID:    userID,
		Username:  username,
		Timestamp: now,
	}
}

func NewUserLeft(userID string, now int64) Presence {
	return Presence{
		Type:      TypeUserLeft,
		UserID:    userID,
		Timestamp: now,
	}
}

func NewPong(clientTimestamp, now int64) Pong {
	return Pong{
		Type:      TypePong,
		Timestamp: clientTimestamp,
		Latency:   now - clientTimestamp,
	}
}

func NewStatsUpdate(userID string, stats json.RawMessage, now int64) StatsUpdate {
	return StatsUpdate{
		Type:      TypeStatsUpdate,
		UserID:    userID,
		Stats:     stats,
		Timestamp: now,
	}
}
