package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skillswap-backend/internal/models"
	"skillswap-backend/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	skillCatalogCacheKey = "skills:catalog"
	skillCatalogCacheTTL = 10 * time.Minute
)

// SkillService handles the skill catalog and member skill links
type SkillService struct {
	skillRepo  *repository.SkillRepository
	memberRepo *repository.MemberRepository
	cache      *redis.Client
}

// NewSkillService creates a new skill service. cache may be nil, in
// which case every catalog read hits the database.
func NewSkillService(skillRepo *repository.SkillRepository, memberRepo *repository.MemberRepository, cache *redis.Client) *SkillService {
	return &SkillService{
		skillRepo:  skillRepo,
		memberRepo: memberRepo,
		cache:      cache,
	}
}

// ListCatalog returns the full skill catalog, name-ordered. The
// catalog is reference data, so it is served cache-aside; cache
// failures fall through to the database.
func (s *SkillService) ListCatalog(ctx context.Context) ([]models.Skill, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, skillCatalogCacheKey).Bytes()
		if err == nil {
			var skills []models.Skill
			if err := json.Unmarshal(data, &skills); err == nil {
				return skills, nil
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Msg("Skill catalog cache read failed")
		}
	}

	skills, err := s.skillRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(skills); err == nil {
			if err := s.cache.Set(ctx, skillCatalogCacheKey, data, skillCatalogCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("Skill catalog cache write failed")
			}
		}
	}
	return skills, nil
}

// ListMemberSkills returns a member's offered and wanted skills
func (s *SkillService) ListMemberSkills(ctx context.Context, memberID string) (*models.MemberSkills, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: member", ErrNotFound)
		}
		return nil, err
	}
	return s.skillRepo.ListByMember(ctx, memberID)
}

// AddMemberSkill links a catalog skill to the member in the given role
func (s *SkillService) AddMemberSkill(ctx context.Context, memberID, skillID, role string) error {
	if role != models.SkillRoleOffered && role != models.SkillRoleWanted {
		return fmt.Errorf("%w: role must be %q or %q", ErrValidation, models.SkillRoleOffered, models.SkillRoleWanted)
	}
	if skillID == "" {
		return fmt.Errorf("%w: skill_id is required", ErrValidation)
	}

	if _, err := s.skillRepo.GetByID(ctx, skillID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: skill", ErrNotFound)
		}
		return err
	}

	if err := s.skillRepo.AddLink(ctx, memberID, skillID, role); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: skill already linked", ErrConflict)
		}
		return err
	}
	return nil
}

// RemoveMemberSkill removes a skill link in the given role
func (s *SkillService) RemoveMemberSkill(ctx context.Context, memberID, skillID, role string) error {
	if role != models.SkillRoleOffered && role != models.SkillRoleWanted {
		return fmt.Errorf("%w: role must be %q or %q", ErrValidation, models.SkillRoleOffered, models.SkillRoleWanted)
	}

	if err := s.skillRepo.RemoveLink(ctx, memberID, skillID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: skill link", ErrNotFound)
		}
		return err
	}
	return nil
}
