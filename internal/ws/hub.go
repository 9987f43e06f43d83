package ws

import (
	"log"
	"sync"
	"time"
)

const defaultHeartbeatInterval = 30 * time.Second

// Hub maps each user to the set of websocket clients currently open on their
// behalf. An entry exists if and only if the user has at least one open
// client; the entry is removed together with the last client. All map
// mutations are serialized through the mutex because broadcast reads and
// iterates the set.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]bool

	heartbeatInterval time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:           make(map[uint]map[*Client]bool),
		heartbeatInterval: defaultHeartbeatInterval,
	}
}

// Register adds client to the set for its user, creating the entry if absent.
// The same user reconnecting yields independent clients until one closes.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
}

// Unregister removes client from its user's set and drops the entry entirely
// when the set becomes empty.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[client.UserID]; exists {
		delete(clients, client)

		if len(clients) == 0 {
			delete(h.clients, client.UserID)
		}
	}
}

// ConnectionCount reports how many clients are currently open for userID.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[userID])
}

// BroadcastToUser sends event to every client open for userID. Delivery is
// fire-and-forget: a client whose send fails is closed and unregistered, not
// retried. The client set is copied under the read lock so sends never run
// while the registry is being mutated.
func (h *Hub) BroadcastToUser(userID uint, event interface{}) {
	h.mu.RLock()
	clients, exists := h.clients[userID]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	targets := make([]*Client, 0, len(clients))
	for client := range clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.send(event); err != nil {
			log.Printf("ws: send to user %d failed, evicting client: %v", userID, err)
			client.Close()
		}
	}
}

// BroadcastToAll sends event to every connected user.
func (h *Hub) BroadcastToAll(event interface{}) {
	h.mu.RLock()
	userIDs := make([]uint, 0, len(h.clients))
	for userID := range h.clients {
		userIDs = append(userIDs, userID)
	}
	h.mu.RUnlock()

	for _, userID := range userIDs {
		h.BroadcastToUser(userID, event)
	}
}
