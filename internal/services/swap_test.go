package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateSwapValidation(t *testing.T) {
	svc := NewSwapService(nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "me", CreateSwapInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, "me", CreateSwapInput{
		RecipientID:    "me",
		SkillOfferedID: "s1",
		SkillWantedID:  "s2",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, "me", CreateSwapInput{
		RecipientID:   "them",
		SkillWantedID: "s2",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewSwapService(nil, nil, nil)

	_, _, err := svc.UpdateStatus(context.Background(), "req", "completed", "me")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.UpdateStatus(context.Background(), "req", "pending", "me")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompleteRejectsBadRating(t *testing.T) {
	svc := NewSwapService(nil, nil, nil)

	_, err := svc.Complete(context.Background(), "req", "me", 0, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Complete(context.Background(), "req", "me", 6, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestScheduleSessionRequiresTime(t *testing.T) {
	svc := NewSwapService(nil, nil, nil)

	_, err := svc.ScheduleSession(context.Background(), "swap", "me", time.Time{})
	assert.ErrorIs(t, err, ErrValidation)
}
