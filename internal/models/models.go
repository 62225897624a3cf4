package models

import "time"

// Member represents a registered user of the platform
type Member struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	Location       *string   `json:"location,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	HourlyRate     *string   `json:"hourly_rate,omitempty"`
	Availability   *string   `json:"availability,omitempty"`
	IsPublic       bool      `json:"is_public"`
	Rating         *float64  `json:"rating,omitempty"`
	CompletedSwaps int       `json:"completed_swaps"`
	PushToken      *string   `json:"-"`
	PasswordHash   string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PublicView strips fields only the owner should see
func (m *Member) PublicView() *Member {
	v := *m
	v.Email = ""
	v.PushToken = nil
	return &v
}

// Skill is an entry in the shared skill catalog
type Skill struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category *string `json:"category,omitempty"`
}

// MemberSkills holds a member's skill links split by role
type MemberSkills struct {
	Offered []Skill `json:"offered"`
	Wanted  []Skill `json:"wanted"`
}

// Skill link roles
const (
	SkillRoleOffered = "offered"
	SkillRoleWanted  = "wanted"
)

// SwapRequest statuses
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCancelled = "cancelled"
)

// ActiveSwap statuses
const (
	ActiveSwapStatusActive    = "active"
	ActiveSwapStatusCompleted = "completed"
	ActiveSwapStatusCancelled = "cancelled"
)

// SwapRequest represents a directed swap proposal between two members
type SwapRequest struct {
	ID             string    `json:"id"`
	RequesterID    string    `json:"requester_id"`
	RecipientID    string    `json:"recipient_id"`
	SkillOfferedID string    `json:"skill_offered_id"`
	SkillWantedID  string    `json:"skill_wanted_id"`
	Message        *string   `json:"message,omitempty"`
	Status         string    `json:"status"`
	HourlyRate     *string   `json:"hourly_rate,omitempty"`
	Rating         *int      `json:"rating,omitempty"`
	Feedback       *string   `json:"feedback,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Denormalized for API responses
	Requester    *Member `json:"requester,omitempty"`
	Recipient    *Member `json:"recipient,omitempty"`
	SkillOffered *Skill  `json:"skill_offered,omitempty"`
	SkillWanted  *Skill  `json:"skill_wanted,omitempty"`
}

// IsParticipant reports whether the member is either side of the request
func (r *SwapRequest) IsParticipant(memberID string) bool {
	return r.RequesterID == memberID || r.RecipientID == memberID
}

// CanTransitionTo reports whether the status transition is legal.
// Only pending requests move; accepted, rejected and cancelled are terminal.
func (r *SwapRequest) CanTransitionTo(newStatus string) bool {
	if r.Status != SwapStatusPending {
		return false
	}
	switch newStatus {
	case SwapStatusAccepted, SwapStatusRejected, SwapStatusCancelled:
		return true
	}
	return false
}

// AuthorizedActor returns the member allowed to apply the transition:
// the recipient accepts or rejects, the requester cancels.
func (r *SwapRequest) AuthorizedActor(newStatus string) string {
	switch newStatus {
	case SwapStatusAccepted, SwapStatusRejected:
		return r.RecipientID
	case SwapStatusCancelled:
		return r.RequesterID
	}
	return ""
}

// ActiveSwap represents an ongoing exchange created when a request is accepted
type ActiveSwap struct {
	ID            string     `json:"id"`
	SwapRequestID string     `json:"swap_request_id"`
	User1ID       string     `json:"user1_id"`
	User2ID       string     `json:"user2_id"`
	Skill1ID      string     `json:"skill1_id"`
	Skill2ID      string     `json:"skill2_id"`
	Status        string     `json:"status"`
	NextSession   *time.Time `json:"next_session,omitempty"`
	TotalSessions int        `json:"total_sessions"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Denormalized for API responses
	User1  *Member `json:"user1,omitempty"`
	User2  *Member `json:"user2,omitempty"`
	Skill1 *Skill  `json:"skill1,omitempty"`
	Skill2 *Skill  `json:"skill2,omitempty"`
}

// IsParticipant reports whether the member is either side of the swap
func (s *ActiveSwap) IsParticipant(memberID string) bool {
	return s.User1ID == memberID || s.User2ID == memberID
}

// SwapBuckets groups a member's swaps for the swaps overview
type SwapBuckets struct {
	Pending   []SwapRequest `json:"pending"`
	Active    []ActiveSwap  `json:"active"`
	Completed []ActiveSwap  `json:"completed"`
}

// Message is a direct message between two members
type Message struct {
	ID            int64     `json:"id"`
	SenderID      string    `json:"sender_id"`
	RecipientID   string    `json:"recipient_id"`
	SwapRequestID *string   `json:"swap_request_id,omitempty"`
	Content       string    `json:"content"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`

	Sender *Member `json:"sender,omitempty"`
}

// Conversation summarizes a message thread with one partner
type Conversation struct {
	Partner     *Member   `json:"partner"`
	LastMessage string    `json:"last_message"`
	LastAt      time.Time `json:"last_at"`
	UnreadCount int       `json:"unread_count"`
}
