package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/repository"
	"skillswap-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MemberHandler handles profile and directory HTTP requests
type MemberHandler struct {
	memberService *services.MemberService
	avatarService *services.AvatarService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService, avatarService *services.AvatarService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		avatarService: avatarService,
	}
}

// GetMe handles GET /api/v1/users/me
func (h *MemberHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)

	profile, err := h.memberService.GetProfile(ctx, memberID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfileRequest is the PATCH body; absent fields stay unchanged
type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	AvatarURL    *string `json:"avatar_url"`
	Location     *string `json:"location"`
	Bio          *string `json:"bio"`
	HourlyRate   *string `json:"hourly_rate"`
	Availability *string `json:"availability"`
	IsPublic     *bool   `json:"is_public"`
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *MemberHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.memberService.UpdateProfile(ctx, memberID, repository.ProfileUpdate{
		Name:         req.Name,
		AvatarURL:    req.AvatarURL,
		Location:     req.Location,
		Bio:          req.Bio,
		HourlyRate:   req.HourlyRate,
		Availability: req.Availability,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("member_id", memberID).Msg("Profile updated")

	respondJSON(w, http.StatusOK, profile)
}

// PushTokenRequest is the body for updating the device push token
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// UpdatePushToken handles PUT /api/v1/users/me/push-token
func (h *MemberHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.memberService.UpdatePushToken(ctx, memberID, req.PushToken); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AvatarUploadRequest is the body for requesting an avatar upload URL
type AvatarUploadRequest struct {
	ContentType string `json:"content_type"`
}

// PresignAvatarUpload handles POST /api/v1/users/me/avatar-upload
func (h *MemberHandler) PresignAvatarUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)

	var req AvatarUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	upload, err := h.avatarService.PresignUpload(ctx, memberID, req.ContentType)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, upload)
}

// GetMember handles GET /api/v1/users/{user_id}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetMemberID(ctx)
	memberID := chi.URLParam(r, "user_id")

	profile, err := h.memberService.GetPublicProfile(ctx, viewerID, memberID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Search handles GET /api/v1/search/users
func (h *MemberHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	minRating, _ := strconv.ParseFloat(q.Get("min_rating"), 64)
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	members, err := h.memberService.Search(ctx, repository.SearchParams{
		Query:        q.Get("q"),
		Location:     q.Get("location"),
		Availability: q.Get("availability"),
		MinRating:    minRating,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"members": members,
		"count":   len(members),
	})
}
