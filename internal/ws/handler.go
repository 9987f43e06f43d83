package ws

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/groupcart-dev/groupcart/internal/types"
)

// ConnectedFrame acknowledges a successful attach.
type ConnectedFrame struct {
	Type      string `json:"type"`
	UserID    uint   `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// PongFrame answers an application-level ping from the client.
type PongFrame struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range types.AllowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	},
}

// Serve returns the handler for the realtime endpoint. The client identifies
// its user with the user_id query parameter; connections without one are
// closed immediately with a policy-violation close frame and never reach the
// registry.
func Serve(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ws: upgrade failed: %v", err)
			return
		}

		userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
		if err != nil || userID == 0 {
			reason := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user_id is required")
			if err := conn.WriteControl(websocket.CloseMessage, reason, time.Now().Add(writeWait)); err != nil {
				log.Printf("ws: failed to write close frame: %v", err)
			}
			conn.Close()
			return
		}

		hub.Attach(conn, uint(userID))
	}
}

// Attach registers conn as a new client for userID, sends the connected
// acknowledgment, starts the heartbeat and blocks servicing reads until the
// connection goes away. Teardown runs exactly once regardless of which side
// ends the connection.
func (h *Hub) Attach(conn *websocket.Conn, userID uint) {
	client := newClient(h, conn, userID)

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		client.markAlive()
		return nil
	})

	h.Register(client)
	defer client.Close()

	connected := ConnectedFrame{
		Type:      "connected",
		UserID:    userID,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := client.send(connected); err != nil {
		log.Printf("ws: failed to send connected frame to user %d: %v", userID, err)
		return
	}

	go client.heartbeat(h.heartbeatInterval)

	client.readLoop()
}
