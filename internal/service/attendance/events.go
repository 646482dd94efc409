// internal/service/attendance/events.go
package attendance

import (
	"leadflow-service/internal/domain/conversation"
	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/domain/metrics"
)

// Events receives record-set changes for push fan-out. The core never depends
// on delivery: a nil sink is valid and every method is fire-and-forget.
type Events interface {
	LeadCreated(l lead.Lead)
	LeadClaimed(leadID, agentID string)
	MessageAppended(conv *conversation.Conversation, msg conversation.Message)
	ConversationUpdated(conv *conversation.Conversation)
	MetricsUpdated(snap metrics.Snapshot)
}
