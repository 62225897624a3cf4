package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"skillswap-backend/internal/models"
	"skillswap-backend/internal/repository"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// MemberService handles profile reads, updates and the public directory
type MemberService struct {
	memberRepo *repository.MemberRepository
	skillRepo  *repository.SkillRepository
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo *repository.MemberRepository, skillRepo *repository.SkillRepository) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		skillRepo:  skillRepo,
	}
}

// ProfileWithSkills bundles a profile with its skill links
type ProfileWithSkills struct {
	*models.Member
	Skills *models.MemberSkills `json:"skills"`
}

// GetProfile returns a member's full profile with skills
func (s *MemberService) GetProfile(ctx context.Context, memberID string) (*ProfileWithSkills, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: member", ErrNotFound)
		}
		return nil, err
	}

	skills, err := s.skillRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return &ProfileWithSkills{Member: member, Skills: skills}, nil
}

// GetPublicProfile returns another member's profile. Private profiles
// are only visible to their owner.
func (s *MemberService) GetPublicProfile(ctx context.Context, viewerID, memberID string) (*ProfileWithSkills, error) {
	profile, err := s.GetProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !profile.IsPublic && viewerID != memberID {
		return nil, fmt.Errorf("%w: member", ErrNotFound)
	}
	if viewerID != memberID {
		profile.Member = profile.Member.PublicView()
	}
	return profile, nil
}

// UpdateProfile patches the supplied fields on the member's own profile
func (s *MemberService) UpdateProfile(ctx context.Context, memberID string, upd repository.ProfileUpdate) (*ProfileWithSkills, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if upd.HourlyRate != nil {
		trimmed := strings.TrimSpace(*upd.HourlyRate)
		upd.HourlyRate = &trimmed
	}

	if err := s.memberRepo.UpdateProfile(ctx, memberID, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: member", ErrNotFound)
		}
		return nil, err
	}
	return s.GetProfile(ctx, memberID)
}

// UpdatePushToken stores the device token used for push notifications
func (s *MemberService) UpdatePushToken(ctx context.Context, memberID string, pushToken *string) error {
	if err := s.memberRepo.UpdatePushToken(ctx, memberID, pushToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: member", ErrNotFound)
		}
		return err
	}
	return nil
}

// Search lists public members matching the filters. Results carry the
// public view only.
func (s *MemberService) Search(ctx context.Context, p repository.SearchParams) ([]*models.Member, error) {
	if p.MinRating < 0 || p.MinRating > 5 {
		return nil, fmt.Errorf("%w: min_rating must be between 0 and 5", ErrValidation)
	}
	if p.Limit <= 0 {
		p.Limit = defaultSearchLimit
	}
	if p.Limit > maxSearchLimit {
		p.Limit = maxSearchLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	members, err := s.memberRepo.Search(ctx, p)
	if err != nil {
		return nil, err
	}

	public := make([]*models.Member, 0, len(members))
	for _, m := range members {
		public = append(public, m.PublicView())
	}
	return public, nil
}
