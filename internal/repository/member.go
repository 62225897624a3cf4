package repository

import (
	"context"
	"fmt"
	"strings"

	"skillswap-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const memberColumns = `id, email, name, avatar_url, location, bio, hourly_rate,
		availability, is_public, rating, completed_swaps, push_token, password_hash,
		created_at, updated_at`

// MemberRepository handles database operations for members
type MemberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

func scanMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.ID, &m.Email, &m.Name, &m.AvatarURL, &m.Location, &m.Bio, &m.HourlyRate,
		&m.Availability, &m.IsPublic, &m.Rating, &m.CompletedSwaps, &m.PushToken,
		&m.PasswordHash, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("member %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	return &m, nil
}

// Create creates a new member; a duplicate email returns ErrDuplicate
func (r *MemberRepository) Create(ctx context.Context, m *models.Member) error {
	query := `
		INSERT INTO users (id, email, name, is_public, completed_swaps, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	opCtx, cancel := opContext(ctx)
	defer cancel()

	_, err := r.db.Exec(opCtx, query,
		m.ID, m.Email, m.Name, m.IsPublic, m.CompletedSwaps, m.PasswordHash, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM users WHERE id = $1`

	var m *models.Member
	err := withRetry(ctx, func(ctx context.Context) error {
		var err error
		m, err = scanMember(r.db.QueryRow(ctx, query, id))
		return err
	})
	return m, err
}

// GetByEmail retrieves a member by email
func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM users WHERE email = $1`

	var m *models.Member
	err := withRetry(ctx, func(ctx context.Context) error {
		var err error
		m, err = scanMember(r.db.QueryRow(ctx, query, email))
		return err
	})
	return m, err
}

// ProfileUpdate carries the patchable profile fields; nil means unchanged
type ProfileUpdate struct {
	Name         *string
	AvatarURL    *string
	Location     *string
	Bio          *string
	HourlyRate   *string
	Availability *string
	IsPublic     *bool
}

// UpdateProfile patches only the supplied fields and refreshes updated_at
func (r *MemberRepository) UpdateProfile(ctx context.Context, memberID string, upd ProfileUpdate) error {
	sets := []string{}
	args := []interface{}{}
	arg := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, arg))
		args = append(args, value)
		arg++
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.AvatarURL != nil {
		add("avatar_url", *upd.AvatarURL)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Bio != nil {
		add("bio", *upd.Bio)
	}
	if upd.HourlyRate != nil {
		add("hourly_rate", *upd.HourlyRate)
	}
	if upd.Availability != nil {
		add("availability", *upd.Availability)
	}
	if upd.IsPublic != nil {
		add("is_public", *upd.IsPublic)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, memberID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), arg)

	opCtx, cancel := opContext(ctx)
	defer cancel()

	result, err := r.db.Exec(opCtx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %w", ErrNotFound)
	}
	return nil
}

// UpdatePushToken stores the device push token for a member
func (r *MemberRepository) UpdatePushToken(ctx context.Context, memberID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1, updated_at = NOW() WHERE id = $2`

	opCtx, cancel := opContext(ctx)
	defer cancel()

	result, err := r.db.Exec(opCtx, query, pushToken, memberID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %w", ErrNotFound)
	}
	return nil
}

// SearchParams filters the public member directory
type SearchParams struct {
	Query        string
	Location     string
	Availability string
	MinRating    float64
	Limit        int
	Offset       int
}

// buildMemberSearchQuery assembles the directory query. Only public
// profiles are visible; free text matches name, location, bio and
// linked skill names. Ordered by rating, then newest.
func buildMemberSearchQuery(p SearchParams) (string, []interface{}) {
	where := []string{"u.is_public = true"}
	args := []interface{}{}
	arg := 1

	if p.Query != "" {
		where = append(where, fmt.Sprintf(`(u.name ILIKE $%d OR u.location ILIKE $%d OR u.bio ILIKE $%d
			OR EXISTS (
				SELECT 1 FROM user_skills_offered uso JOIN skills s ON s.id = uso.skill_id
				WHERE uso.user_id = u.id AND s.name ILIKE $%d
			)
			OR EXISTS (
				SELECT 1 FROM user_skills_wanted usw JOIN skills s ON s.id = usw.skill_id
				WHERE usw.user_id = u.id AND s.name ILIKE $%d
			))`, arg, arg, arg, arg, arg))
		args = append(args, "%"+p.Query+"%")
		arg++
	}
	if p.Location != "" {
		where = append(where, fmt.Sprintf("u.location ILIKE $%d", arg))
		args = append(args, "%"+p.Location+"%")
		arg++
	}
	if p.Availability != "" {
		where = append(where, fmt.Sprintf("u.availability ILIKE $%d", arg))
		args = append(args, "%"+p.Availability+"%")
		arg++
	}
	if p.MinRating > 0 {
		where = append(where, fmt.Sprintf("u.rating >= $%d", arg))
		args = append(args, p.MinRating)
		arg++
	}

	query := fmt.Sprintf(`
		SELECT `+memberColumns+`
		FROM users u
		WHERE %s
		ORDER BY u.rating DESC NULLS LAST, u.created_at DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), arg, arg+1)
	args = append(args, p.Limit, p.Offset)

	return query, args
}

// Search lists public members matching the filters
func (r *MemberRepository) Search(ctx context.Context, p SearchParams) ([]*models.Member, error) {
	query, args := buildMemberSearchQuery(p)

	opCtx, cancel := opContext(ctx)
	defer cancel()

	rows, err := r.db.Query(opCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search members: %w", err)
	}
	defer rows.Close()

	members := []*models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}
