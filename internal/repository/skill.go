package repository

import (
	"context"
	"fmt"

	"skillswap-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SkillRepository handles database operations for the skill catalog
// and per-member skill links
type SkillRepository struct {
	db *pgxpool.Pool
}

// NewSkillRepository creates a new skill repository
func NewSkillRepository(db *pgxpool.Pool) *SkillRepository {
	return &SkillRepository{db: db}
}

// linkTable maps a skill role to its link table. Roles are validated
// before this is interpolated into SQL.
func linkTable(role string) (string, error) {
	switch role {
	case models.SkillRoleOffered:
		return "user_skills_offered", nil
	case models.SkillRoleWanted:
		return "user_skills_wanted", nil
	}
	return "", fmt.Errorf("unknown skill role %q", role)
}

// ListAll returns the full catalog, name-ordered
func (r *SkillRepository) ListAll(ctx context.Context) ([]models.Skill, error) {
	query := `SELECT id, name, category FROM skills ORDER BY name`

	var skills []models.Skill
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list skills: %w", err)
		}
		defer rows.Close()

		skills = []models.Skill{}
		for rows.Next() {
			var s models.Skill
			if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
				return fmt.Errorf("failed to scan skill: %w", err)
			}
			skills = append(skills, s)
		}
		return rows.Err()
	})
	return skills, err
}

// GetByID retrieves a skill by ID
func (r *SkillRepository) GetByID(ctx context.Context, id string) (*models.Skill, error) {
	query := `SELECT id, name, category FROM skills WHERE id = $1`

	opCtx, cancel := opContext(ctx)
	defer cancel()

	var s models.Skill
	err := r.db.QueryRow(opCtx, query, id).Scan(&s.ID, &s.Name, &s.Category)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("skill %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}
	return &s, nil
}

// ListByMember returns a member's offered and wanted skills. Both
// lists are always non-nil.
func (r *SkillRepository) ListByMember(ctx context.Context, memberID string) (*models.MemberSkills, error) {
	result := &models.MemberSkills{Offered: []models.Skill{}, Wanted: []models.Skill{}}

	for _, role := range []string{models.SkillRoleOffered, models.SkillRoleWanted} {
		table, err := linkTable(role)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf(`
			SELECT s.id, s.name, s.category
			FROM %s l
			JOIN skills s ON s.id = l.skill_id
			WHERE l.user_id = $1
			ORDER BY s.name
		`, table)

		rows, err := r.db.Query(ctx, query, memberID)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s skills: %w", role, err)
		}

		for rows.Next() {
			var s models.Skill
			if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s skill: %w", role, err)
			}
			if role == models.SkillRoleOffered {
				result.Offered = append(result.Offered, s)
			} else {
				result.Wanted = append(result.Wanted, s)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("error iterating %s skills: %w", role, err)
		}
	}

	return result, nil
}

// AddLink links a skill to a member in the given role. An existing
// link returns ErrDuplicate.
func (r *SkillRepository) AddLink(ctx context.Context, memberID, skillID, role string) error {
	table, err := linkTable(role)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, skill_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, skill_id) DO NOTHING
	`, table)

	opCtx, cancel := opContext(ctx)
	defer cancel()

	result, err := r.db.Exec(opCtx, query, memberID, skillID)
	if err != nil {
		return fmt.Errorf("failed to add skill link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("skill already linked: %w", ErrDuplicate)
	}
	return nil
}

// RemoveLink removes a skill link in the given role
func (r *SkillRepository) RemoveLink(ctx context.Context, memberID, skillID, role string) error {
	table, err := linkTable(role)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND skill_id = $2`, table)

	opCtx, cancel := opContext(ctx)
	defer cancel()

	result, err := r.db.Exec(opCtx, query, memberID, skillID)
	if err != nil {
		return fmt.Errorf("failed to remove skill link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("skill link %w", ErrNotFound)
	}
	return nil
}
