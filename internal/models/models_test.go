package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwapRequestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to accepted", SwapStatusPending, SwapStatusAccepted, true},
		{"pending to rejected", SwapStatusPending, SwapStatusRejected, true},
		{"pending to cancelled", SwapStatusPending, SwapStatusCancelled, true},
		{"pending to pending", SwapStatusPending, SwapStatusPending, false},
		{"pending to unknown", SwapStatusPending, "completed", false},
		{"accepted is terminal", SwapStatusAccepted, SwapStatusRejected, false},
		{"accepted stays accepted", SwapStatusAccepted, SwapStatusAccepted, false},
		{"rejected is terminal", SwapStatusRejected, SwapStatusAccepted, false},
		{"cancelled is terminal", SwapStatusCancelled, SwapStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &SwapRequest{Status: tt.from}
			assert.Equal(t, tt.want, req.CanTransitionTo(tt.to))
		})
	}
}

func TestSwapRequestAuthorizedActor(t *testing.T) {
	req := &SwapRequest{
		RequesterID: "requester",
		RecipientID: "recipient",
		Status:      SwapStatusPending,
	}

	assert.Equal(t, "recipient", req.AuthorizedActor(SwapStatusAccepted))
	assert.Equal(t, "recipient", req.AuthorizedActor(SwapStatusRejected))
	assert.Equal(t, "requester", req.AuthorizedActor(SwapStatusCancelled))
	assert.Equal(t, "", req.AuthorizedActor(SwapStatusPending))
	assert.Equal(t, "", req.AuthorizedActor("completed"))
}

func TestSwapRequestIsParticipant(t *testing.T) {
	req := &SwapRequest{RequesterID: "a", RecipientID: "b"}

	assert.True(t, req.IsParticipant("a"))
	assert.True(t, req.IsParticipant("b"))
	assert.False(t, req.IsParticipant("c"))
	assert.False(t, req.IsParticipant(""))
}

func TestActiveSwapIsParticipant(t *testing.T) {
	swap := &ActiveSwap{User1ID: "a", User2ID: "b"}

	assert.True(t, swap.IsParticipant("a"))
	assert.True(t, swap.IsParticipant("b"))
	assert.False(t, swap.IsParticipant("c"))
}

func TestMemberPublicView(t *testing.T) {
	token := "device-token"
	bio := "I teach tabla"
	m := &Member{
		ID:        "m1",
		Email:     "m1@example.com",
		Name:      "M One",
		Bio:       &bio,
		PushToken: &token,
	}

	v := m.PublicView()

	assert.Empty(t, v.Email)
	assert.Nil(t, v.PushToken)
	assert.Equal(t, "m1", v.ID)
	assert.Equal(t, &bio, v.Bio)

	// Original is untouched
	assert.Equal(t, "m1@example.com", m.Email)
	assert.NotNil(t, m.PushToken)
}
