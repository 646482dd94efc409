// internal/domain/conversation/entity.go
package conversation

import (
	"time"

	"leadflow-service/internal/domain/lead"
)

// Status is the conversation lifecycle state. "new" is transient and is
// superseded by "active" in the same claim; it is kept for auditing.
type Status string

const (
	StatusNew      Status = "new"
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

// CanTransition reports whether moving from s to target is a legal step.
// finished is terminal.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case StatusNew:
		return target == StatusActive
	case StatusActive:
		return target == StatusPaused || target == StatusFinished
	case StatusPaused:
		return target == StatusActive || target == StatusFinished
	}
	return false
}

// Attendable reports whether the conversation still accepts message appends.
func (s Status) Attendable() bool {
	return s == StatusActive || s == StatusPaused
}

// AuthorKind identifies who produced a message.
type AuthorKind string

const (
	AuthorCustomer  AuthorKind = "customer"
	AuthorAgent     AuthorKind = "agent"
	AuthorAssistant AuthorKind = "assistant"
	AuthorSystem    AuthorKind = "system"
)

func (a AuthorKind) Valid() bool {
	switch a {
	case AuthorCustomer, AuthorAgent, AuthorAssistant, AuthorSystem:
		return true
	}
	return false
}

// DeliveryStatus advances monotonically sent -> delivered -> read.
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
)

// Rank maps delivery states onto their advancement order.
func (d DeliveryStatus) Rank() int {
	switch d {
	case DeliverySent:
		return 1
	case DeliveryDelivered:
		return 2
	case DeliveryRead:
		return 3
	}
	return 0
}

// Message is immutable after append except for DeliveryStatus, which only
// moves forward. Sequence breaks wall-clock ties so ordering is total.
type Message struct {
	ID             string         `json:"id" db:"id"`
	ConversationID string         `json:"conversation_id" db:"conversation_id"`
	AuthorKind     AuthorKind     `json:"author_kind" db:"author_kind"`
	Content        string         `json:"content" db:"content"`
	Timestamp      time.Time      `json:"timestamp" db:"timestamp"`
	Sequence       int64          `json:"sequence" db:"sequence"`
	DeliveryStatus DeliveryStatus `json:"delivery_status" db:"delivery_status"`
}

// Conversation is the attendable unit once a lead has been claimed. Its ID
// equals the originating lead's ID.
type Conversation struct {
	ID              string `json:"id" db:"id"`
	AssignedAgentID string `json:"assigned_agent_id" db:"assigned_agent_id"`
	Status          Status `json:"status" db:"status"`

	ContactChannel string             `json:"contact_channel" db:"contact_channel"`
	CustomerName   string             `json:"customer_name,omitempty" db:"customer_name"`
	Interest       string             `json:"interest,omitempty" db:"interest"`
	Qualification  lead.Qualification `json:"qualification" db:"qualification"`
	Score          int                `json:"score" db:"score"`
	EstimatedValue float64            `json:"estimated_value" db:"estimated_value"`

	// WaitTimeMinutes is the lead's wait frozen at claim time.
	WaitTimeMinutes int `json:"wait_time_minutes" db:"wait_time_minutes"`

	Messages []Message `json:"messages"`

	// Sale records whether a finished attendance converted.
	Sale bool `json:"sale" db:"sale"`

	ClaimedAt     time.Time  `json:"claimed_at" db:"claimed_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}
