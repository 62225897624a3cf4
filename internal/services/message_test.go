package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendValidation(t *testing.T) {
	svc := NewMessageService(nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Send(ctx, "sender", "recipient", "", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, "sender", "recipient", "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, "sender", "recipient", strings.Repeat("x", maxMessageLength+1), nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, "sender", "", "hello", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, "sender", "sender", "hello", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListConversationValidation(t *testing.T) {
	svc := NewMessageService(nil, nil, nil)
	ctx := context.Background()

	_, err := svc.ListConversation(ctx, "member", "", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ListConversation(ctx, "member", "partner", -1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMarkConversationReadValidation(t *testing.T) {
	svc := NewMessageService(nil, nil, nil)

	_, err := svc.MarkConversationRead(context.Background(), "member", "")
	assert.ErrorIs(t, err, ErrValidation)
}
