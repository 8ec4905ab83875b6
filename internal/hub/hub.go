package hub

import (
	"encoding/json"
	"sync"
)

// Event represents a real-time relationship event delivered to a user:
// a friend request, an invitation, an accepted request, and so on.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Event types published by the handlers.
const (
	EventFriendRequest  = "friend.request"
	EventFriendAccepted = "friend.accepted"
	EventGroupInvite    = "group.invite"
	EventSessionInvite  = "session.invite"
)

// Client represents a single client connection (one open event stream).
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub fans relationship events out to each user's open streams.
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client stream for a user.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a client stream.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// Notify sends an event to every open stream of a user. Users without an open
// stream simply miss the event; state lives in the database, not the hub.
func (h *Hub) Notify(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.users[userID]
	if !ok {
		return
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		// Non-blocking send so a slow client cannot stall the hub.
		select {
		case client <- messageBytes:
		default:
		}
	}
}

// NotifyAll sends an event to several users at once.
func (h *Hub) NotifyAll(userIDs []uint, event Event) {
	for _, id := range userIDs {
		h.Notify(id, event)
	}
}
