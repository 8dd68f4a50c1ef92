// Package signaling terminates studio-room WebSocket connections and relays
// WebRTC negotiation traffic between peers. The relay never buffers or
// retries undeliverable frames: peers recover through ICE restart and
// renegotiation, not through delivery guarantees at this layer.
package signaling

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kendevco/discordant/internal/infrastructure/registry"
	"go.uber.org/zap"
)

type Config struct {
	SendBufferSize  int
	MaxPayloadBytes int64
	PingInterval    time.Duration
	PongTimeout     time.Duration
	WriteTimeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = 64
	}
	if c.MaxPayloadBytes <= 0 {
		c.MaxPayloadBytes = 65536
	}
	if c.PingInterval <= 0 {
		c.PingInterval = time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 5 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return c
}

type Relay struct {
	reg     *registry.Registry[*Client]
	cfg     Config
	logger  *zap.SugaredLogger
	metrics *Metrics
	now     func() time.Time
}

func NewRelay(reg *registry.Registry[*Client], cfg Config, logger *zap.SugaredLogger, metrics *Metrics) *Relay {
	return &Relay{
		reg:     reg,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (r *Relay) nowMillis() int64 {
	return r.now().UnixMilli()
}

// ServeConn owns the connection for its lifetime: it starts the write pump,
// reads frames until the socket dies, then cleans up membership and notifies
// the room. The roomID/userID hints come from the connect URL and are used
// for logging only; the authoritative join is the join frame.
func (r *Relay) ServeConn(conn *websocket.Conn, roomIDHint, userIDHint string) {
	client := newClient(conn, conn.RemoteAddr().String(), r.cfg.SendBufferSize)

	r.logger.Infow("signaling client connecting",
		"remoteAddr", client.remoteAddr,
		"roomId", roomIDHint,
		"userId", userIDHint,
	)

	r.metrics.activeConnections.Inc()
	defer r.metrics.activeConnections.Dec()

	conn.SetReadLimit(r.cfg.MaxPayloadBytes)
	_ = conn.SetReadDeadline(r.now().Add(r.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(r.cfg.PongTimeout))
	})

	go client.writePump(r.cfg.PingInterval, r.cfg.WriteTimeout)

	r.readLoop(client, conn)
	r.disconnect(client)
}

func (r *Relay) readLoop(client *Client, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				r.logger.Debugw("signaling read error", "remoteAddr", client.remoteAddr, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(r.cfg.PongTimeout))

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			r.logger.Warnw("ignoring malformed signaling frame", "remoteAddr", client.remoteAddr, "error", err)
			continue
		}

		r.dispatch(client, env)
	}
}

// dispatch is an explicit match over the closed set of frame types; the
// first (and only) matching arm wins.
func (r *Relay) dispatch(client *Client, env Envelope) {
	if env.Type == TypeJoin {
		r.handleJoin(client, env)
		return
	}

	// Everything else requires an established session: frames from a
	// connection that never joined cannot be routed safely.
	sess, ok := r.reg.Session(client)
	if !ok {
		r.logger.Debugw("dropping frame from un-joined connection",
			"remoteAddr", client.remoteAddr, "type", env.Type)
		r.metrics.droppedFrames.WithLabelValues("not_joined").Inc()
		return
	}

	switch env.Type {
	case TypeOffer, TypeAnswer, TypeICECandidate:
		r.relaySignal(sess, env)
	case TypePing:
		r.handlePing(client, env)
	case TypeStats:
		r.handleStats(client, sess, env)
	default:
		r.logger.Debugw("unknown signaling message type", "type", env.Type, "userId", sess.UserID)
	}
}

func (r *Relay) handleJoin(client *Client, env Envelope) {
	if env.RoomID == "" || env.UserID == "" {
		r.logger.Warnw("ignoring join without roomId/userId", "remoteAddr", client.remoteAddr)
		return
	}

	// Snapshot who is already here before adding, so room-info excludes
	// the joiner itself.
	others := r.reg.MembersOf(env.RoomID, client)

	r.reg.Join(client, registry.Session{
		RoomID:   env.RoomID,
		UserID:   env.UserID,
		Username: env.Username,
	})

	now := r.nowMillis()

	if !client.trySend(NewRoomInfo(env.RoomID, others, now)) {
		r.metrics.droppedFrames.WithLabelValues("buffer_full").Inc()
	}

	r.broadcast(env.RoomID, client, NewUserJoined(env.UserID, env.Username, now), TypeUserJoined)

	r.metrics.joins.Inc()
	r.updateGauges()
	r.logger.Infow("user joined room", "roomId", env.RoomID, "userId", env.UserID)
}

// relaySignal forwards offer/answer/ice-candidate frames to the peer named
// by the frame's userId, after substituting the sender's own id. Routing
// never trusts the forwarded identity; the field is only display data once
// rewritten. Unroutable frames are dropped silently: WebRTC renegotiates
// above this layer.
func (r *Relay) relaySignal(sess registry.Session, env Envelope) {
	target, ok := r.reg.Find(env.UserID)
	if !ok {
		r.metrics.droppedFrames.WithLabelValues("target_gone").Inc()
		r.logger.Debugw("signal target not connected", "type", env.Type, "target", env.UserID)
		return
	}

	env.UserID = sess.UserID
	env.Timestamp = r.nowMillis()

	if !target.trySend(env) {
		r.metrics.droppedFrames.WithLabelValues("buffer_full").Inc()
		r.logger.Debugw("target buffer full, dropping signal", "type", env.Type)
		return
	}

	r.metrics.relayedFrames.WithLabelValues(env.Type).Inc()
}

func (r *Relay) handlePing(client *Client, env Envelope) {
	if !client.trySend(NewPong(env.Timestamp, r.nowMillis())) {
		r.metrics.droppedFrames.WithLabelValues("buffer_full").Inc()
	}
}

// handleStats fans connection telemetry out to the rest of the room.
// Best-effort only.
func (r *Relay) handleStats(client *Client, sess registry.Session, env Envelope) {
	r.broadcast(sess.RoomID, client, NewStatsUpdate(sess.UserID, env.Stats, r.nowMillis()), TypeStatsUpdate)
}

func (r *Relay) disconnect(client *Client) {
	sess, ok := r.reg.Leave(client)
	client.close()

	if !ok {
		return
	}

	r.broadcast(sess.RoomID, client, NewUserLeft(sess.UserID, r.nowMillis()), TypeUserLeft)
	r.updateGauges()
	r.logger.Infow("user left room", "roomId", sess.RoomID, "userId", sess.UserID)
}

// broadcast sends to a snapshot of the room taken up front, so concurrent
// join/leave never mutates the set mid-iteration. Sends are non-blocking;
// a slow peer loses the frame rather than stalling the others.
func (r *Relay) broadcast(roomID string, exclude *Client, msg any, msgType string) {
	for _, peer := range r.reg.Peers(roomID, exclude) {
		if !peer.trySend(msg) {
			r.metrics.droppedFrames.WithLabelValues("buffer_full").Inc()
			r.logger.Debugw("peer buffer full, dropping broadcast", "roomId", roomID, "type", msgType)
			continue
		}
		r.metrics.relayedFrames.WithLabelValues(msgType).Inc()
	}
}

func (r *Relay) updateGauges() {
	rooms, _ := r.reg.Counts()
	r.metrics.activeRooms.Set(float64(rooms))
}
