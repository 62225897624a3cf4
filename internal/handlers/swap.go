package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/models"
	"skillswap-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SwapHandler handles swap request lifecycle HTTP requests
type SwapHandler struct {
	swapService *services.SwapService
	wsHub       *services.WSHub
	pushService *services.PushService
}

// NewSwapHandler creates a new swap handler
func NewSwapHandler(swapService *services.SwapService, wsHub *services.WSHub, pushService *services.PushService) *SwapHandler {
	return &SwapHandler{
		swapService: swapService,
		wsHub:       wsHub,
		pushService: pushService,
	}
}

// CreateSwapRequest is the body for creating a swap request
type CreateSwapRequest struct {
	RecipientID    string  `json:"recipient_id"`
	SkillOfferedID string  `json:"skill_offered_id"`
	SkillWantedID  string  `json:"skill_wanted_id"`
	Message        *string `json:"message"`
	HourlyRate     *string `json:"hourly_rate"`
}

// Create handles POST /api/v1/swaps
func (h *SwapHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requesterID := middleware.GetMemberID(ctx)

	var req CreateSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.swapService.Create(ctx, requesterID, services.CreateSwapInput{
		RecipientID:    req.RecipientID,
		SkillOfferedID: req.SkillOfferedID,
		SkillWantedID:  req.SkillWantedID,
		Message:        req.Message,
		HourlyRate:     req.HourlyRate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("swap_request_id", created.ID).
		Str("requester_id", requesterID).
		Str("recipient_id", created.RecipientID).
		Msg("Swap request created")

	h.wsHub.Notify(created.RecipientID, services.WSMessage{
		Type: services.WSEventSwapRequest,
		Data: created,
	})
	if !h.wsHub.IsOnline(created.RecipientID) {
		go h.pushService.NotifyMember(context.Background(), created.RecipientID,
			"New swap request", "Someone wants to swap skills with you")
	}

	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /api/v1/swaps
func (h *SwapHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)

	buckets, err := h.swapService.ListBuckets(ctx, memberID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buckets)
}

// Get handles GET /api/v1/swaps/{swap_id}
func (h *SwapHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)
	swapID := chi.URLParam(r, "swap_id")

	req, err := h.swapService.GetRequest(ctx, swapID, memberID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// UpdateStatusRequest is the body for a status transition
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/v1/swaps/{swap_id}/status
func (h *SwapHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetMemberID(ctx)
	swapID := chi.URLParam(r, "swap_id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, swap, err := h.swapService.UpdateStatus(ctx, swapID, req.Status, actorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("swap_request_id", swapID).
		Str("actor_id", actorID).
		Str("status", req.Status).
		Msg("Swap request status updated")

	// The counterpart learns about the transition
	counterpartID := updated.RequesterID
	if actorID == updated.RequesterID {
		counterpartID = updated.RecipientID
	}
	h.wsHub.Notify(counterpartID, services.WSMessage{
		Type: services.WSEventSwapUpdate,
		Data: updated,
	})
	if req.Status == models.SwapStatusAccepted && !h.wsHub.IsOnline(counterpartID) {
		go h.pushService.NotifyMember(context.Background(), counterpartID,
			"Swap accepted", "Your swap request was accepted")
	}

	response := map[string]interface{}{
		"request": updated,
	}
	if swap != nil {
		response["active_swap"] = swap
	}
	respondJSON(w, http.StatusOK, response)
}

// CompleteSwapRequest is the body for completing a swap
type CompleteSwapRequest struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback"`
}

// Complete handles POST /api/v1/swaps/{swap_id}/complete
func (h *SwapHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetMemberID(ctx)
	swapID := chi.URLParam(r, "swap_id")

	var req CompleteSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	swap, err := h.swapService.Complete(ctx, swapID, actorID, req.Rating, req.Feedback)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("swap_request_id", swapID).
		Str("actor_id", actorID).
		Int("rating", req.Rating).
		Msg("Swap completed")

	counterpartID := swap.User1ID
	if actorID == swap.User1ID {
		counterpartID = swap.User2ID
	}
	h.wsHub.Notify(counterpartID, services.WSMessage{
		Type: services.WSEventSwapUpdate,
		Data: swap,
	})

	respondJSON(w, http.StatusOK, swap)
}

// ScheduleSessionRequest is the body for scheduling the next session
type ScheduleSessionRequest struct {
	NextSession time.Time `json:"next_session"`
}

// ScheduleSession handles PATCH /api/v1/swaps/active/{active_swap_id}/schedule
func (h *SwapHandler) ScheduleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetMemberID(ctx)
	activeSwapID := chi.URLParam(r, "active_swap_id")

	var req ScheduleSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	swap, err := h.swapService.ScheduleSession(ctx, activeSwapID, actorID, req.NextSession)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("active_swap_id", activeSwapID).
		Str("actor_id", actorID).
		Time("next_session", req.NextSession).
		Msg("Session scheduled")

	counterpartID := swap.User1ID
	if actorID == swap.User1ID {
		counterpartID = swap.User2ID
	}
	h.wsHub.Notify(counterpartID, services.WSMessage{
		Type: services.WSEventSwapUpdate,
		Data: swap,
	})

	respondJSON(w, http.StatusOK, swap)
}
