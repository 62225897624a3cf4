package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillswap-backend/internal/models"
	"skillswap-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SwapService handles the swap request lifecycle and active swaps
type SwapService struct {
	swapRepo   *repository.SwapRepository
	memberRepo *repository.MemberRepository
	skillRepo  *repository.SkillRepository
}

// NewSwapService creates a new swap service
func NewSwapService(swapRepo *repository.SwapRepository, memberRepo *repository.MemberRepository, skillRepo *repository.SkillRepository) *SwapService {
	return &SwapService{
		swapRepo:   swapRepo,
		memberRepo: memberRepo,
		skillRepo:  skillRepo,
	}
}

// CreateSwapInput carries the fields of a new swap request
type CreateSwapInput struct {
	RecipientID    string
	SkillOfferedID string
	SkillWantedID  string
	Message        *string
	HourlyRate     *string
}

// Create validates and persists a new pending swap request
func (s *SwapService) Create(ctx context.Context, requesterID string, in CreateSwapInput) (*models.SwapRequest, error) {
	if in.RecipientID == "" || in.SkillOfferedID == "" || in.SkillWantedID == "" {
		return nil, fmt.Errorf("%w: recipient_id, skill_offered_id and skill_wanted_id are required", ErrValidation)
	}
	if in.RecipientID == requesterID {
		return nil, fmt.Errorf("%w: cannot request a swap with yourself", ErrValidation)
	}

	if _, err := s.memberRepo.GetByID(ctx, in.RecipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: recipient", ErrNotFound)
		}
		return nil, err
	}
	for _, skillID := range []string{in.SkillOfferedID, in.SkillWantedID} {
		if _, err := s.skillRepo.GetByID(ctx, skillID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: skill %s", ErrNotFound, skillID)
			}
			return nil, err
		}
	}

	dup, err := s.swapRepo.HasPendingDuplicate(ctx, requesterID, in.RecipientID, in.SkillOfferedID, in.SkillWantedID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: an identical pending request already exists", ErrConflict)
	}

	if in.HourlyRate != nil {
		trimmed := strings.TrimSpace(*in.HourlyRate)
		in.HourlyRate = &trimmed
	}

	now := time.Now()
	req := &models.SwapRequest{
		ID:             uuid.New().String(),
		RequesterID:    requesterID,
		RecipientID:    in.RecipientID,
		SkillOfferedID: in.SkillOfferedID,
		SkillWantedID:  in.SkillWantedID,
		Message:        in.Message,
		Status:         models.SwapStatusPending,
		HourlyRate:     in.HourlyRate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.swapRepo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	s.attachRequestDetails(ctx, req)
	return req, nil
}

// ListBuckets returns the member's swaps grouped into pending, active
// and completed, with member and skill details attached for display
func (s *SwapService) ListBuckets(ctx context.Context, memberID string) (*models.SwapBuckets, error) {
	buckets, err := s.swapRepo.ListBuckets(ctx, memberID)
	if err != nil {
		return nil, err
	}

	for i := range buckets.Pending {
		s.attachRequestDetails(ctx, &buckets.Pending[i])
	}
	for i := range buckets.Active {
		s.attachSwapDetails(ctx, &buckets.Active[i])
	}
	for i := range buckets.Completed {
		s.attachSwapDetails(ctx, &buckets.Completed[i])
	}
	return buckets, nil
}

// GetRequest returns a swap request the member participates in
func (s *SwapService) GetRequest(ctx context.Context, requestID, memberID string) (*models.SwapRequest, error) {
	req, err := s.swapRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: swap request", ErrNotFound)
		}
		return nil, err
	}
	if !req.IsParticipant(memberID) {
		return nil, fmt.Errorf("%w: not a participant of this swap request", ErrNotAuthorized)
	}
	s.attachRequestDetails(ctx, req)
	return req, nil
}

// UpdateStatus applies a status transition on behalf of the actor.
// Accepting additionally spawns the active swap; the two writes are
// one transaction, and the returned ActiveSwap is non-nil only then.
func (s *SwapService) UpdateStatus(ctx context.Context, requestID, newStatus, actorID string) (*models.SwapRequest, *models.ActiveSwap, error) {
	switch newStatus {
	case models.SwapStatusAccepted, models.SwapStatusRejected, models.SwapStatusCancelled:
	default:
		return nil, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	req, err := s.swapRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: swap request", ErrNotFound)
		}
		return nil, nil, err
	}

	if !req.IsParticipant(actorID) {
		return nil, nil, fmt.Errorf("%w: not a participant of this swap request", ErrNotAuthorized)
	}
	if !req.CanTransitionTo(newStatus) {
		return nil, nil, fmt.Errorf("%w: cannot move a %s request to %s", ErrConflict, req.Status, newStatus)
	}
	if req.AuthorizedActor(newStatus) != actorID {
		return nil, nil, fmt.Errorf("%w: wrong actor for %s", ErrNotAuthorized, newStatus)
	}

	var swap *models.ActiveSwap
	if newStatus == models.SwapStatusAccepted {
		swap, err = s.swapRepo.Accept(ctx, req)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: request is no longer pending", ErrConflict)
			}
			return nil, nil, err
		}
		s.attachSwapDetails(ctx, swap)
	} else {
		if err := s.swapRepo.UpdateStatus(ctx, requestID, newStatus); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: request is no longer pending", ErrConflict)
			}
			return nil, nil, err
		}
	}

	req.Status = newStatus
	s.attachRequestDetails(ctx, req)
	return req, swap, nil
}

// Complete finishes an accepted swap. The actor rates the counterpart
// 1-5 with optional feedback; the swap, the request and both member
// counters update atomically.
func (s *SwapService) Complete(ctx context.Context, requestID, actorID string, rating int, feedback *string) (*models.ActiveSwap, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	req, err := s.swapRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: swap request", ErrNotFound)
		}
		return nil, err
	}
	if !req.IsParticipant(actorID) {
		return nil, fmt.Errorf("%w: not a participant of this swap request", ErrNotAuthorized)
	}
	if req.Status != models.SwapStatusAccepted {
		return nil, fmt.Errorf("%w: only accepted swaps can be completed", ErrConflict)
	}

	ratedMemberID := req.RequesterID
	if actorID == req.RequesterID {
		ratedMemberID = req.RecipientID
	}

	if err := s.swapRepo.Complete(ctx, req, ratedMemberID, rating, feedback); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: swap is not active", ErrConflict)
		}
		return nil, err
	}

	swap, err := s.swapRepo.GetActiveByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.attachSwapDetails(ctx, swap)
	return swap, nil
}

// ScheduleSession sets the next session time on an active swap
func (s *SwapService) ScheduleSession(ctx context.Context, activeSwapID, actorID string, nextSession time.Time) (*models.ActiveSwap, error) {
	if nextSession.IsZero() {
		return nil, fmt.Errorf("%w: next_session is required", ErrValidation)
	}

	swap, err := s.swapRepo.GetActiveByID(ctx, activeSwapID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: active swap", ErrNotFound)
		}
		return nil, err
	}
	if !swap.IsParticipant(actorID) {
		return nil, fmt.Errorf("%w: not a participant of this swap", ErrNotAuthorized)
	}
	if swap.Status != models.ActiveSwapStatusActive {
		return nil, fmt.Errorf("%w: swap is not active", ErrConflict)
	}

	if err := s.swapRepo.ScheduleSession(ctx, activeSwapID, nextSession); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: swap is not active", ErrConflict)
		}
		return nil, err
	}

	swap, err = s.swapRepo.GetActiveByID(ctx, activeSwapID)
	if err != nil {
		return nil, err
	}
	s.attachSwapDetails(ctx, swap)
	return swap, nil
}

// attachRequestDetails loads member and skill info for display.
// Lookups are best effort; a missing row leaves the field nil.
func (s *SwapService) attachRequestDetails(ctx context.Context, req *models.SwapRequest) {
	req.Requester = s.memberSummary(ctx, req.RequesterID)
	req.Recipient = s.memberSummary(ctx, req.RecipientID)
	req.SkillOffered = s.skillSummary(ctx, req.SkillOfferedID)
	req.SkillWanted = s.skillSummary(ctx, req.SkillWantedID)
}

func (s *SwapService) attachSwapDetails(ctx context.Context, swap *models.ActiveSwap) {
	swap.User1 = s.memberSummary(ctx, swap.User1ID)
	swap.User2 = s.memberSummary(ctx, swap.User2ID)
	swap.Skill1 = s.skillSummary(ctx, swap.Skill1ID)
	swap.Skill2 = s.skillSummary(ctx, swap.Skill2ID)
}

func (s *SwapService) memberSummary(ctx context.Context, memberID string) *models.Member {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		log.Warn().Err(err).Str("member_id", memberID).Msg("Failed to load member summary")
		return nil
	}
	return member.PublicView()
}

func (s *SwapService) skillSummary(ctx context.Context, skillID string) *models.Skill {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		log.Warn().Err(err).Str("skill_id", skillID).Msg("Failed to load skill summary")
		return nil
	}
	return skill
}
