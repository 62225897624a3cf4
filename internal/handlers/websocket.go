package handlers

import (
	"encoding/json"
	"net/http"

	"skillswap-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub         *services.WSHub
	authService *services.AuthService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, authService *services.AuthService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
	}
}

// clientEvent is what connected clients may send upstream
type clientEvent struct {
	Type        string `json:"type"`
	RecipientID string `json:"recipient_id,omitempty"`
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	memberID, err := h.authService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(memberID, conn)
	defer h.hub.Unregister(memberID, conn)

	log.Info().Str("member_id", memberID).Msg("WebSocket connection established")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("member_id", memberID).Msg("WebSocket read error")
			}
			return
		}

		var event clientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			h.hub.Notify(memberID, services.WSMessage{
				Type:    services.WSEventError,
				Message: "invalid message format",
			})
			continue
		}

		switch event.Type {
		case services.WSEventTyping:
			if event.RecipientID != "" {
				h.hub.RelayTyping(memberID, event.RecipientID)
			}
		default:
			h.hub.Notify(memberID, services.WSMessage{
				Type:    services.WSEventError,
				Message: "unknown event type",
			})
		}
	}
}
