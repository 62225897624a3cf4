package repository

import (
	"context"
	"fmt"

	"skillswap-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a message and fills in its generated ID and timestamp
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (sender_id, recipient_id, swap_request_id, content, is_read)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id, created_at
	`
	opCtx, cancel := opContext(ctx)
	defer cancel()

	err := r.db.QueryRow(opCtx, query,
		msg.SenderID, msg.RecipientID, msg.SwapRequestID, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListConversation returns messages between two members in either
// direction. before is an exclusive message ID cursor; zero means the
// latest page. The newest limit messages before the cursor are
// fetched, then reversed so the page reads oldest-first.
func (r *MessageRepository) ListConversation(ctx context.Context, memberA, memberB string, before int64, limit int) ([]models.Message, error) {
	query := `
		SELECT id, sender_id, recipient_id, swap_request_id, content, is_read, created_at
		FROM messages
		WHERE ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
		  AND ($3::bigint = 0 OR id < $3)
		ORDER BY id DESC
		LIMIT $4
	`
	var messages []models.Message
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, memberA, memberB, before, limit)
		if err != nil {
			return fmt.Errorf("failed to list conversation: %w", err)
		}
		defer rows.Close()

		messages = []models.Message{}
		for rows.Next() {
			var msg models.Message
			if err := rows.Scan(
				&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.SwapRequestID,
				&msg.Content, &msg.IsRead, &msg.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan message: %w", err)
			}
			messages = append(messages, msg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkConversationRead marks all messages from the partner to the
// member as read
func (r *MessageRepository) MarkConversationRead(ctx context.Context, memberID, partnerID string) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = true
		WHERE recipient_id = $1 AND sender_id = $2 AND is_read = false
	`
	opCtx, cancel := opContext(ctx)
	defer cancel()

	result, err := r.db.Exec(opCtx, query, memberID, partnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListConversations returns one row per message partner with the last
// message and the member's unread count, most recent first.
func (r *MessageRepository) ListConversations(ctx context.Context, memberID string, limit, offset int) ([]models.Conversation, error) {
	query := `
		SELECT partner_id, content, created_at, unread
		FROM (
			SELECT DISTINCT ON (partner_id)
				CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS partner_id,
				content,
				created_at,
				COUNT(*) FILTER (WHERE recipient_id = $1 AND is_read = false)
					OVER (PARTITION BY CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END) AS unread
			FROM messages
			WHERE sender_id = $1 OR recipient_id = $1
			ORDER BY partner_id, id DESC
		) threads
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	opCtx, cancel := opContext(ctx)
	defer cancel()

	rows, err := r.db.Query(opCtx, query, memberID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var conv models.Conversation
		var partnerID string
		if err := rows.Scan(&partnerID, &conv.LastMessage, &conv.LastAt, &conv.UnreadCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.Partner = &models.Member{ID: partnerID}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return conversations, nil
}
