package ws

import (
	"context"
	"encoding/json"
	"sync"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

// Message is the envelope pushed to browser connections
type Message struct {
	Type         string               `json:"type"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// Hub tracks the open notification sockets of every user. A user may have
// several tabs open; each gets its own Client.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	logger.Debug("ws client registered", "user_id", c.UserID, "connections", len(set))
}

// Unregister removes the client and closes its send channel. Safe to call
// more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	logger.Debug("ws client unregistered", "user_id", c.UserID)
}

// Connections returns how many sockets userID has open
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Deliver pushes the notification to every open socket of the recipient.
// A client whose buffer is full is dropped.
func (h *Hub) Deliver(_ context.Context, recipient *domain.User, n *domain.Notification) error {
	msg, err := json.Marshal(Message{Type: "notification", Notification: n})
	if err != nil {
		return err
	}
	h.SendToUser(recipient.ID, msg)
	return nil
}

// SendToUser queues a raw message on every socket of userID
func (h *Hub) SendToUser(userID int64, msg []byte) int {
	h.mu.RLock()
	var slow []*Client
	sent := 0
	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
			sent++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("ws client too slow, dropping", "user_id", userID)
		h.Unregister(c)
	}
	return sent
}

// CloseAll disconnects every client, used on shutdown
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for uid, set := range h.clients {
		for c := range set {
			close(c.Send)
		}
		delete(h.clients, uid)
	}
}
