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
	defaultMessagePageSize = 50
	maxMessagePageSize     = 100
	maxMessageLength       = 4000
)

// MessageService handles direct messages between members
type MessageService struct {
	messageRepo *repository.MessageRepository
	memberRepo  *repository.MemberRepository
	swapRepo    *repository.SwapRepository
}

// NewMessageService creates a new message service
func NewMessageService(messageRepo *repository.MessageRepository, memberRepo *repository.MemberRepository, swapRepo *repository.SwapRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		memberRepo:  memberRepo,
		swapRepo:    swapRepo,
	}
}

// Send persists a message from the sender to the recipient, optionally
// tagged with a swap request the two participate in
func (s *MessageService) Send(ctx context.Context, senderID, recipientID, content string, swapRequestID *string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if len(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: content exceeds %d characters", ErrValidation, maxMessageLength)
	}
	if recipientID == "" {
		return nil, fmt.Errorf("%w: recipient_id is required", ErrValidation)
	}
	if recipientID == senderID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}

	if _, err := s.memberRepo.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: recipient", ErrNotFound)
		}
		return nil, err
	}

	if swapRequestID != nil {
		req, err := s.swapRepo.GetRequestByID(ctx, *swapRequestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: swap request", ErrNotFound)
			}
			return nil, err
		}
		if !req.IsParticipant(senderID) || !req.IsParticipant(recipientID) {
			return nil, fmt.Errorf("%w: swap request does not involve both members", ErrValidation)
		}
	}

	msg := &models.Message{
		SenderID:      senderID,
		RecipientID:   recipientID,
		SwapRequestID: swapRequestID,
		Content:       content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if sender, err := s.memberRepo.GetByID(ctx, senderID); err == nil {
		msg.Sender = sender.PublicView()
	}
	return msg, nil
}

// ListConversation returns the messages between the member and a
// partner, ascending by creation. before is an exclusive message ID
// cursor for paging backwards through history.
func (s *MessageService) ListConversation(ctx context.Context, memberID, partnerID string, before int64, limit int) ([]models.Message, error) {
	if partnerID == "" {
		return nil, fmt.Errorf("%w: partner id is required", ErrValidation)
	}
	if before < 0 {
		return nil, fmt.Errorf("%w: before cursor cannot be negative", ErrValidation)
	}
	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}

	return s.messageRepo.ListConversation(ctx, memberID, partnerID, before, limit)
}

// MarkConversationRead marks all messages from the partner as read and
// returns how many were affected
func (s *MessageService) MarkConversationRead(ctx context.Context, memberID, partnerID string) (int64, error) {
	if partnerID == "" {
		return 0, fmt.Errorf("%w: partner id is required", ErrValidation)
	}
	return s.messageRepo.MarkConversationRead(ctx, memberID, partnerID)
}

// ListConversations returns the member's threads with partner details,
// most recent first
func (s *MessageService) ListConversations(ctx context.Context, memberID string, limit, offset int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}
	if offset < 0 {
		offset = 0
	}

	conversations, err := s.messageRepo.ListConversations(ctx, memberID, limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range conversations {
		partner, err := s.memberRepo.GetByID(ctx, conversations[i].Partner.ID)
		if err == nil {
			conversations[i].Partner = partner.PublicView()
		}
	}
	return conversations, nil
}
