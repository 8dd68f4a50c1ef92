package signaling

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one live signaling connection. Outbound frames go through a
// buffered channel drained by a dedicated write pump so a slow peer never
// blocks whoever is broadcasting to it.
type Client struct {
	conn *connWrapper
	send chan any

	remoteAddr string

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, remoteAddr string, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Client{
		conn:       newConnWrapper(conn),
		send:       make(chan any, sendBuffer), // buffered to avoid dead-locks on slow clients
		remoteAddr: remoteAddr,
		done:       make(chan struct{}),
	}
}

// trySend queues a frame without blocking. It reports false when the
// client's buffer is full or the client is closed; callers drop the frame.
func (c *Client) trySend(v any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with periodic protocol-level pings.
func (c *Client) writePump(pingInterval time.Duration, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
