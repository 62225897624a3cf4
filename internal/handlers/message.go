package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	messageService *services.MessageService
	wsHub          *services.WSHub
	pushService    *services.PushService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService, wsHub *services.WSHub, pushService *services.PushService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		wsHub:          wsHub,
		pushService:    pushService,
	}
}

// SendMessageRequest is the body for sending a message
type SendMessageRequest struct {
	RecipientID   string  `json:"recipient_id"`
	Content       string  `json:"content"`
	SwapRequestID *string `json:"swap_request_id"`
}

// Send handles POST /api/v1/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	senderID := middleware.GetMemberID(ctx)

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.messageService.Send(ctx, senderID, req.RecipientID, req.Content, req.SwapRequestID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Int64("message_id", msg.ID).
		Str("sender_id", senderID).
		Str("recipient_id", req.RecipientID).
		Msg("Message sent")

	h.wsHub.Notify(req.RecipientID, services.WSMessage{
		Type:     services.WSEventMessage,
		SenderID: senderID,
		Data:     msg,
	})
	if !h.wsHub.IsOnline(req.RecipientID) {
		senderName := "Someone"
		if msg.Sender != nil {
			senderName = msg.Sender.Name
		}
		go h.pushService.NotifyMember(context.Background(), req.RecipientID,
			senderName, msg.Content)
	}

	respondJSON(w, http.StatusCreated, msg)
}

// ListConversation handles GET /api/v1/messages/{user_id}
func (h *MessageHandler) ListConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)
	partnerID := chi.URLParam(r, "user_id")

	before, _ := strconv.ParseInt(r.URL.Query().Get("before"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.messageService.ListConversation(ctx, memberID, partnerID, before, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// MarkRead handles POST /api/v1/messages/{user_id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)
	partnerID := chi.URLParam(r, "user_id")

	updated, err := h.messageService.MarkConversationRead(ctx, memberID, partnerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"marked_read": updated,
	})
}

// ListConversations handles GET /api/v1/messages
func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	conversations, err := h.messageService.ListConversations(ctx, memberID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": conversations,
		"count":         len(conversations),
	})
}
