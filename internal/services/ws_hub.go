package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket event types pushed to clients
const (
	WSEventMessage     = "message"
	WSEventSwapRequest = "swap_request"
	WSEventSwapUpdate  = "swap_update"
	WSEventTyping      = "typing"
	WSEventError       = "error"
)

// WSMessage represents a WebSocket event
type WSMessage struct {
	Type     string      `json:"type"`
	SenderID string      `json:"sender_id,omitempty"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// wsClient pairs a connection with a write lock; gorilla/websocket
// does not allow concurrent writers on one connection.
type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per member
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[string]*wsClient),
	}
}

// Register registers a connection for a member, replacing any
// previous one
func (h *WSHub) Register(memberID string, conn *websocket.Conn) {
	h.mu.Lock()
	if existing, ok := h.clients[memberID]; ok {
		existing.conn.Close()
	}
	h.clients[memberID] = &wsClient{conn: conn}
	h.mu.Unlock()

	log.Info().Str("member_id", memberID).Msg("WebSocket connection registered")
}

// Unregister removes a member's connection. A newer connection for
// the same member is left untouched.
func (h *WSHub) Unregister(memberID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[memberID]; ok && current.conn == conn {
		current.conn.Close()
		delete(h.clients, memberID)
		log.Info().Str("member_id", memberID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a member has a live connection
func (h *WSHub) IsOnline(memberID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[memberID]
	return ok
}

// SendToMember sends an event to a specific member
func (h *WSHub) SendToMember(memberID string, message WSMessage) error {
	h.mu.RLock()
	client, ok := h.clients[memberID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("member %s is not connected", memberID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(memberID, client.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Notify pushes an event to a member if online; offline members are
// silently skipped, push notifications cover that path
func (h *WSHub) Notify(memberID string, message WSMessage) {
	if !h.IsOnline(memberID) {
		return
	}
	if err := h.SendToMember(memberID, message); err != nil {
		log.Error().Err(err).Str("member_id", memberID).Str("type", message.Type).Msg("Failed to push WebSocket event")
	}
}

// RelayTyping forwards a typing indicator from sender to recipient
func (h *WSHub) RelayTyping(senderID, recipientID string) {
	h.Notify(recipientID, WSMessage{
		Type:     WSEventTyping,
		SenderID: senderID,
	})
}
