package repository

import (
	"context"
	"fmt"
	"time"

	"skillswap-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const swapRequestColumns = `id, requester_id, recipient_id, skill_offered_id, skill_wanted_id,
		message, status, hourly_rate, rating, feedback, created_at, updated_at`

const activeSwapColumns = `id, swap_request_id, user1_id, user2_id, skill1_id, skill2_id,
		status, next_session, total_sessions, created_at, updated_at`

// SwapRepository handles database operations for swap requests and
// the active swaps spawned from them
type SwapRepository struct {
	db *pgxpool.Pool
}

// NewSwapRepository creates a new swap repository
func NewSwapRepository(db *pgxpool.Pool) *SwapRepository {
	return &SwapRepository{db: db}
}

func scanSwapRequest(row pgx.Row) (*models.SwapRequest, error) {
	var req models.SwapRequest
	err := row.Scan(
		&req.ID, &req.RequesterID, &req.RecipientID, &req.SkillOfferedID, &req.SkillWantedID,
		&req.Message, &req.Status, &req.HourlyRate, &req.Rating, &req.Feedback,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("swap request %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan swap request: %w", err)
	}
	return &req, nil
}

func scanActiveSwap(row pgx.Row) (*models.ActiveSwap, error) {
	var swap models.ActiveSwap
	err := row.Scan(
		&swap.ID, &swap.SwapRequestID, &swap.User1ID, &swap.User2ID, &swap.Skill1ID, &swap.Skill2ID,
		&swap.Status, &swap.NextSession, &swap.TotalSessions, &swap.CreatedAt, &swap.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("active swap %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan active swap: %w", err)
	}
	return &swap, nil
}

// CreateRequest inserts a new pending swap request
func (r *SwapRepository) CreateRequest(ctx context.Context, req *models.SwapRequest) error {
	query := `
		INSERT INTO swap_requests (id, requester_id, recipient_id, skill_offered_id, skill_wanted_id,
			message, status, hourly_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	opCtx, cancel := opContext(ctx)
	defer cancel()

	_, err := r.db.Exec(opCtx, query,
		req.ID, req.RequesterID, req.RecipientID, req.SkillOfferedID, req.SkillWantedID,
		req.Message, req.Status, req.HourlyRate, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create swap request: %w", err)
	}
	return nil
}

// HasPendingDuplicate checks whether an identical pending request
// already exists between the same members for the same skill pair
func (r *SwapRepository) HasPendingDuplicate(ctx context.Context, requesterID, recipientID, skillOfferedID, skillWantedID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM swap_requests
			WHERE requester_id = $1 AND recipient_id = $2
			  AND skill_offered_id = $3 AND skill_wanted_id = $4
			  AND status = 'pending'
		)
	`
	opCtx, cancel := opContext(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(opCtx, query, requesterID, recipientID, skillOfferedID, skillWantedID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate request: %w", err)
	}
	return exists, nil
}

// GetRequestByID retrieves a swap request by ID
func (r *SwapRepository) GetRequestByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	query := `SELECT ` + swapRequestColumns + ` FROM swap_requests WHERE id = $1`

	var req *models.SwapRequest
	err := withRetry(ctx, func(ctx context.Context) error {
		var err error
		req, err = scanSwapRequest(r.db.QueryRow(ctx, query, id))
		return err
	})
	return req, err
}

// UpdateStatus applies a terminal status to a still-pending request.
// Returns ErrNotFound when the request no longer is pending, so a
// racing second transition loses cleanly.
func (r *SwapRepository) UpdateStatus(ctx context.Context, requestID, newStatus string) error {
	query := `
		UPDATE swap_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`
	opCtx, cancel := opContext(ctx)
	defer cancel()

	result, err := r.db.Exec(opCtx, query, newStatus, requestID)
	if err != nil {
		return fmt.Errorf("failed to update swap request status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("pending swap request %w", ErrNotFound)
	}
	return nil
}

// Accept marks the request accepted and creates its active swap in a
// single transaction. The active_swaps insert is keyed on the request
// ID, so retrying a partially observed accept never spawns a second
// swap row.
func (r *SwapRepository) Accept(ctx context.Context, req *models.SwapRequest) (*models.ActiveSwap, error) {
	opCtx, cancel := opContext(ctx)
	defer cancel()

	tx, err := r.db.Begin(opCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer tx.Rollback(opCtx)

	result, err := tx.Exec(opCtx, `
		UPDATE swap_requests
		SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to accept swap request: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Retry path: the request may already be accepted with its
		// swap in place. Anything else is a lost race.
		var status string
		if err := tx.QueryRow(opCtx, `SELECT status FROM swap_requests WHERE id = $1`, req.ID).Scan(&status); err != nil {
			return nil, fmt.Errorf("failed to re-read swap request: %w", err)
		}
		if status != models.SwapStatusAccepted {
			return nil, fmt.Errorf("pending swap request %w", ErrNotFound)
		}
	}

	now := time.Now()
	_, err = tx.Exec(opCtx, `
		INSERT INTO active_swaps (id, swap_request_id, user1_id, user2_id, skill1_id, skill2_id,
			status, total_sessions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', 0, $7, $8)
		ON CONFLICT (swap_request_id) DO NOTHING
	`, uuid.New().String(), req.ID, req.RequesterID, req.RecipientID,
		req.SkillOfferedID, req.SkillWantedID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create active swap: %w", err)
	}

	swap, err := scanActiveSwap(tx.QueryRow(opCtx,
		`SELECT `+activeSwapColumns+` FROM active_swaps WHERE swap_request_id = $1`, req.ID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(opCtx); err != nil {
		return nil, fmt.Errorf("failed to commit accept transaction: %w", err)
	}
	return swap, nil
}

// GetActiveByID retrieves an active swap by ID
func (r *SwapRepository) GetActiveByID(ctx context.Context, id string) (*models.ActiveSwap, error) {
	query := `SELECT ` + activeSwapColumns + ` FROM active_swaps WHERE id = $1`

	var swap *models.ActiveSwap
	err := withRetry(ctx, func(ctx context.Context) error {
		var err error
		swap, err = scanActiveSwap(r.db.QueryRow(ctx, query, id))
		return err
	})
	return swap, err
}

// GetActiveByRequestID retrieves the active swap spawned from a request
func (r *SwapRepository) GetActiveByRequestID(ctx context.Context, requestID string) (*models.ActiveSwap, error) {
	query := `SELECT ` + activeSwapColumns + ` FROM active_swaps WHERE swap_request_id = $1`

	var swap *models.ActiveSwap
	err := withRetry(ctx, func(ctx context.Context) error {
		var err error
		swap, err = scanActiveSwap(r.db.QueryRow(ctx, query, requestID))
		return err
	})
	return swap, err
}

// ListBuckets returns a member's swaps grouped into pending requests,
// active swaps and completed swaps. The bucket predicates are mutually
// exclusive, so an ID appears in at most one bucket.
func (r *SwapRepository) ListBuckets(ctx context.Context, memberID string) (*models.SwapBuckets, error) {
	buckets := &models.SwapBuckets{
		Pending:   []models.SwapRequest{},
		Active:    []models.ActiveSwap{},
		Completed: []models.ActiveSwap{},
	}

	opCtx, cancel := opContext(ctx)
	defer cancel()

	rows, err := r.db.Query(opCtx, `
		SELECT `+swapRequestColumns+`
		FROM swap_requests
		WHERE (requester_id = $1 OR recipient_id = $1) AND status = 'pending'
		ORDER BY created_at DESC
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		buckets.Pending = append(buckets.Pending, *req)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating pending requests: %w", err)
	}

	for _, status := range []string{models.ActiveSwapStatusActive, models.ActiveSwapStatusCompleted} {
		rows, err := r.db.Query(opCtx, `
			SELECT `+activeSwapColumns+`
			FROM active_swaps
			WHERE (user1_id = $1 OR user2_id = $1) AND status = $2
			ORDER BY updated_at DESC
		`, memberID, status)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s swaps: %w", status, err)
		}
		for rows.Next() {
			swap, err := scanActiveSwap(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			if status == models.ActiveSwapStatusActive {
				buckets.Active = append(buckets.Active, *swap)
			} else {
				buckets.Completed = append(buckets.Completed, *swap)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("error iterating %s swaps: %w", status, err)
		}
	}

	return buckets, nil
}

// ScheduleSession sets the next session time on an active swap and
// counts the arranged session
func (r *SwapRepository) ScheduleSession(ctx context.Context, activeSwapID string, nextSession time.Time) error {
	query := `
		UPDATE active_swaps
		SET next_session = $1, total_sessions = total_sessions + 1, updated_at = NOW()
		WHERE id = $2 AND status = 'active'
	`
	opCtx, cancel := opContext(ctx)
	defer cancel()

	result, err := r.db.Exec(opCtx, query, nextSession, activeSwapID)
	if err != nil {
		return fmt.Errorf("failed to schedule session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("active swap %w", ErrNotFound)
	}
	return nil
}

// Complete finishes an active swap in a single transaction: the swap
// moves to completed, the rating and feedback land on the request, both
// members' completed counters rise and the rated member's average is
// recomputed.
func (r *SwapRepository) Complete(ctx context.Context, req *models.SwapRequest, ratedMemberID string, rating int, feedback *string) error {
	opCtx, cancel := opContext(ctx)
	defer cancel()

	tx, err := r.db.Begin(opCtx)
	if err != nil {
		return fmt.Errorf("failed to begin complete transaction: %w", err)
	}
	defer tx.Rollback(opCtx)

	result, err := tx.Exec(opCtx, `
		UPDATE active_swaps
		SET status = 'completed', updated_at = NOW()
		WHERE swap_request_id = $1 AND status = 'active'
	`, req.ID)
	if err != nil {
		return fmt.Errorf("failed to complete active swap: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("active swap %w", ErrNotFound)
	}

	_, err = tx.Exec(opCtx, `
		UPDATE swap_requests
		SET rating = $1, feedback = $2, rated_user_id = $3, updated_at = NOW()
		WHERE id = $4
	`, rating, feedback, ratedMemberID, req.ID)
	if err != nil {
		return fmt.Errorf("failed to record swap feedback: %w", err)
	}

	_, err = tx.Exec(opCtx, `
		UPDATE users
		SET completed_swaps = completed_swaps + 1, updated_at = NOW()
		WHERE id = ANY($1)
	`, []string{req.RequesterID, req.RecipientID})
	if err != nil {
		return fmt.Errorf("failed to update completed counters: %w", err)
	}

	_, err = tx.Exec(opCtx, `
		UPDATE users
		SET rating = (
			SELECT AVG(rating)::numeric(3,2) FROM swap_requests
			WHERE rated_user_id = $1 AND rating IS NOT NULL
		), updated_at = NOW()
		WHERE id = $1
	`, ratedMemberID)
	if err != nil {
		return fmt.Errorf("failed to recompute rating: %w", err)
	}

	if err := tx.Commit(opCtx); err != nil {
		return fmt.Errorf("failed to commit complete transaction: %w", err)
	}
	return nil
}
