// Package statsclient is a small client for the signaling socket's ping and
// stats channels. Embedders use it to measure round-trip latency against the
// relay and to share connection-quality stats with the rest of the room.
package statsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Config struct {
	// URL is the ws:// or wss:// signaling endpoint.
	URL      string
	RoomID   string
	UserID   string
	Username string

	PingInterval     time.Duration
	HandshakeTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.PingInterval <= 0 {
		c.PingInterval = time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	return c
}

// RTTStats aggregates round-trip samples. EWMA smooths with alpha 0.2, so
// roughly the last ten pings dominate.
type RTTStats struct {
	EWMA    time.Duration
	Min     time.Duration
	Max     time.Duration
	Samples int
}

const ewmaAlpha = 0.2

type envelope struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Username  string          `json:"username,omitempty"`
	Stats     json.RawMessage `json:"stats,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

type Client struct {
	cfg  Config
	conn *websocket.Conn

	writeMu sync.Mutex

	mu            sync.RWMutex
	closed        bool
	rttEWMA       float64
	rttMin        time.Duration
	rttMax        time.Duration
	rttSamples    int
	onStatsUpdate func(userID string, stats json.RawMessage)

	done chan struct{}
}

// Dial connects, joins the room and starts the ping and read loops.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial signaling endpoint: %w", err)
	}

	c := &Client{
		cfg:  cfg,
		conn: conn,
		done: make(chan struct{}),
	}

	join := envelope{
		Type:     "join",
		RoomID:   cfg.RoomID,
		UserID:   cfg.UserID,
		Username: cfg.Username,
	}
	if err := c.writeJSON(join); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send join: %w", err)
	}

	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// OnStatsUpdate registers the callback invoked for every stats-update frame
// from a peer. Must be called before peers start publishing to avoid missing
// frames.
func (c *Client) OnStatsUpdate(fn func(userID string, stats json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatsUpdate = fn
}

// PublishStats shares a stats blob with the rest of the room. The relay
// forwards it verbatim.
func (c *Client) PublishStats(stats any) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	return c.writeJSON(envelope{
		Type:      "stats",
		Stats:     raw,
		Timestamp: time.Now().UnixMilli(),
	})
}

// RTT returns the aggregate of all pong samples so far.
func (c *Client) RTT() RTTStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return RTTStats{
		EWMA:    time.Duration(c.rttEWMA),
		Min:     c.rttMin,
		Max:     c.rttMax,
		Samples: c.rttSamples,
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	return c.conn.Close()
}

func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			err := c.writeJSON(envelope{
				Type:      "ping",
				Timestamp: time.Now().UnixMilli(),
			})
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) readLoop() {
	defer c.Close()

	for {
		var env envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}

		switch env.Type {
		case "pong":
			// The pong echoes the ping's original timestamp.
			c.recordSample(time.Duration(time.Now().UnixMilli()-env.Timestamp) * time.Millisecond)
		case "stats-update":
			c.mu.RLock()
			fn := c.onStatsUpdate
			c.mu.RUnlock()
			if fn != nil {
				fn(env.UserID, env.Stats)
			}
		}
	}
}

func (c *Client) recordSample(rtt time.Duration) {
	if rtt < 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rttSamples == 0 {
		c.rttEWMA = float64(rtt)
		c.rttMin = rtt
		c.rttMax = rtt
	} else {
		c.rttEWMA = ewmaAlpha*float64(rtt) + (1-ewmaAlpha)*c.rttEWMA
		if rtt < c.rttMin {
			c.rttMin = rtt
		}
		if rtt > c.rttMax {
			c.rttMax = rtt
		}
	}
	c.rttSamples++
}
