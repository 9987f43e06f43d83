package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// Client is one open delivery connection. It belongs to exactly one user for
// its entire lifetime and is never reassigned; a reconnecting user gets a
// brand-new Client.
type Client struct {
	UserID uint

	hub  *Hub
	conn *websocket.Conn

	// mu serializes writes to conn and guards the liveness state.
	mu       sync.Mutex
	alive    bool
	lastSeen time.Time

	done     chan struct{}
	teardown sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		UserID:   userID,
		hub:      hub,
		conn:     conn,
		alive:    true,
		lastSeen: time.Now(),
		done:     make(chan struct{}),
	}
}

// send writes v as a JSON frame with a write deadline.
func (c *Client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *Client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// markAlive records a heartbeat acknowledgment or other peer activity.
func (c *Client) markAlive() {
	c.mu.Lock()
	c.alive = true
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

// consumeAlive clears the liveness flag and reports whether the peer
// acknowledged anything since the previous heartbeat tick.
func (c *Client) consumeAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasAlive := c.alive
	c.alive = false
	return wasAlive
}

// Close tears the client down exactly once: the heartbeat goroutine stops,
// the registry entry is removed and the connection is closed. Safe to call
// from any of the teardown paths (read error, failed send, missed
// heartbeats).
func (c *Client) Close() {
	c.teardown.Do(func() {
		close(c.done)
		c.hub.Unregister(c)
		c.conn.Close()
	})
}

// heartbeat pings the peer every interval and evicts it after two
// consecutive intervals without an acknowledgment. The ticker lives and dies
// with the client.
func (c *Client) heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if !c.consumeAlive() {
				log.Printf("ws: user %d missed two heartbeats, evicting", c.UserID)
				c.Close()
				return
			}
			if err := c.ping(); err != nil {
				log.Printf("ws: heartbeat ping to user %d failed: %v", c.UserID, err)
				c.Close()
				return
			}
		}
	}
}

// readLoop services inbound frames until the connection goes away. Besides
// protocol pongs (handled by the pong handler), clients may send application
// "ping" frames which are answered with a timestamped "pong".
func (c *Client) readLoop() {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error for user %d: %v", c.UserID, err)
			}
			return
		}

		c.markAlive()

		var frame struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}

		if frame.Type == "ping" {
			pong := PongFrame{Type: "pong", Timestamp: time.Now().Format(time.RFC3339)}
			if err := c.send(pong); err != nil {
				log.Printf("ws: pong to user %d failed: %v", c.UserID, err)
				return
			}
		}
	}
}
