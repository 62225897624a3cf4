package handlers

import (
	"encoding/json"
	"net/http"

	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SkillHandler handles skill catalog and skill link HTTP requests
type SkillHandler struct {
	skillService *services.SkillService
}

// NewSkillHandler creates a new skill handler
func NewSkillHandler(skillService *services.SkillService) *SkillHandler {
	return &SkillHandler{
		skillService: skillService,
	}
}

// ListCatalog handles GET /api/v1/skills
func (h *SkillHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	skills, err := h.skillService.ListCatalog(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"skills": skills,
	})
}

// ListMemberSkills handles GET /api/v1/users/{user_id}/skills
func (h *SkillHandler) ListMemberSkills(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "user_id")

	skills, err := h.skillService.ListMemberSkills(r.Context(), memberID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, skills)
}

// AddSkillRequest is the body for linking a skill
type AddSkillRequest struct {
	SkillID string `json:"skill_id"`
	Role    string `json:"role"`
}

// AddMemberSkill handles POST /api/v1/users/me/skills
func (h *SkillHandler) AddMemberSkill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)

	var req AddSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.skillService.AddMemberSkill(ctx, memberID, req.SkillID, req.Role); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("member_id", memberID).
		Str("skill_id", req.SkillID).
		Str("role", req.Role).
		Msg("Skill linked")

	w.WriteHeader(http.StatusCreated)
}

// RemoveMemberSkill handles DELETE /api/v1/users/me/skills/{skill_id}
func (h *SkillHandler) RemoveMemberSkill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := middleware.GetMemberID(ctx)
	skillID := chi.URLParam(r, "skill_id")
	role := r.URL.Query().Get("role")

	if err := h.skillService.RemoveMemberSkill(ctx, memberID, skillID, role); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("member_id", memberID).
		Str("skill_id", skillID).
		Str("role", role).
		Msg("Skill unlinked")

	w.WriteHeader(http.StatusNoContent)
}
