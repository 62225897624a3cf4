package services

import (
	"context"
	"fmt"

	"skillswap-backend/internal/config"
	"skillswap-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushService delivers APNs notifications to members who registered a
// device token. Delivery is best effort: failures are logged, never
// propagated to the caller.
type PushService struct {
	client     *apns2.Client
	topic      string
	memberRepo *repository.MemberRepository
}

// NewPushService creates a push service. When APNs is disabled or
// misconfigured the returned service is a no-op.
func NewPushService(cfg config.APNSConfig, memberRepo *repository.MemberRepository) (*PushService, error) {
	svc := &PushService{topic: cfg.Topic, memberRepo: memberRepo}
	if !cfg.Enabled {
		return svc, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	t := &token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	}

	client := apns2.NewTokenClient(t)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	svc.client = client
	return svc, nil
}

// Enabled reports whether push delivery is configured
func (s *PushService) Enabled() bool {
	return s.client != nil
}

// NotifyMember sends an alert to the member's registered device
func (s *PushService) NotifyMember(ctx context.Context, memberID, title, body string) {
	if s.client == nil {
		return
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		log.Warn().Err(err).Str("member_id", memberID).Msg("Push skipped, member lookup failed")
		return
	}
	if member.PushToken == nil || *member.PushToken == "" {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: *member.PushToken,
		Topic:       s.topic,
		Payload: payload.NewPayload().
			AlertTitle(title).
			AlertBody(body).
			Sound("default"),
	}

	res, err := s.client.PushWithContext(ctx, notification)
	if err != nil {
		log.Error().Err(err).Str("member_id", memberID).Msg("Failed to send push notification")
		return
	}
	if !res.Sent() {
		log.Warn().
			Str("member_id", memberID).
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Msg("Push notification rejected")
	}
}
