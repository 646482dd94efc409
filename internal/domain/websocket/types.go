// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing      EventType = "ping"
	EventTypePong      EventType = "pong"
	EventTypeConnected EventType = "connected"
	EventTypeError     EventType = "error"

	// Queue events (server -> client)
	EventTypeLeadNew     EventType = "lead:new"
	EventTypeLeadClaimed EventType = "lead:claimed"

	// Conversation events (server -> client)
	EventTypeConversationMessage EventType = "conversation:message"
	EventTypeConversationStatus  EventType = "conversation:status"

	// Read receipts (client -> server)
	EventTypeMessageDelivered EventType = "message:delivered"
	EventTypeMessageRead      EventType = "message:read"

	// Metrics events (server -> client)
	EventTypeMetricsUpdate EventType = "metrics:update"

	// Subscription events
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ID        string      `json:"id,omitempty"`
}

// Subscription channels that clients can subscribe to
type ChannelType string

const (
	ChannelQueue         ChannelType = "queue"
	ChannelConversations ChannelType = "conversations"
	ChannelMetrics       ChannelType = "metrics"
)

// SubscribeRequest sent by client to subscribe to specific channels
type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// UnsubscribeRequest sent by client to unsubscribe from channels
type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// LeadClaimedData tells queue viewers a lead left the unclaimed set.
type LeadClaimedData struct {
	LeadID  string `json:"lead_id"`
	AgentID string `json:"agent_id"`
}

// ReceiptData is sent by agents to advance a message's delivery status.
type ReceiptData struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

// NewMessage builds a stamped message ready for fan-out.
func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
