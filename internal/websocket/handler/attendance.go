// internal/websocket/handler/attendance.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	wstypes "leadflow-service/internal/domain/websocket"
	"leadflow-service/internal/service/attendance"
	ws "leadflow-service/internal/websocket"
)

// AttendanceHandler processes read receipts sent by connected agents.
type AttendanceHandler struct {
	conversations *attendance.ConversationService
}

func NewAttendanceHandler(conversations *attendance.ConversationService) *AttendanceHandler {
	return &AttendanceHandler{
		conversations: conversations,
	}
}

// SupportedEvents returns events this handler supports
func (h *AttendanceHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeMessageDelivered,
		wstypes.EventTypeMessageRead,
	}
}

// HandleMessage processes receipt messages
func (h *AttendanceHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeMessageDelivered:
		return h.handleReceipt(ctx, client, msg, true)

	case wstypes.EventTypeMessageRead:
		return h.handleReceipt(ctx, client, msg, false)

	default:
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}
}

func (h *AttendanceHandler) handleReceipt(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage, delivered bool) error {
	var req wstypes.ReceiptData
	if err := mapToStruct(msg.Data, &req); err != nil {
		client.SendError("invalid_request", "Invalid receipt request", err.Error())
		return err
	}

	// The receipt only applies to the conversation assigned to this agent.
	conv, err := h.conversations.GetConversation(ctx, req.ConversationID)
	if err != nil {
		client.SendError("receipt_failed", "Conversation not found", err.Error())
		return err
	}
	if conv.AssignedAgentID != client.AgentID() {
		client.SendError("receipt_forbidden", "Conversation is assigned to another agent", "")
		return fmt.Errorf("agent %s is not assigned to conversation %s", client.AgentID(), req.ConversationID)
	}

	if delivered {
		_, err = h.conversations.MarkDelivered(ctx, req.ConversationID, req.MessageID)
	} else {
		_, err = h.conversations.MarkRead(ctx, req.ConversationID, req.MessageID)
	}
	if err != nil {
		client.SendError("receipt_failed", "Failed to update delivery status", err.Error())
		return err
	}

	client.SendMessage(wstypes.NewMessage(msg.Type, wstypes.ReceiptData{
		ConversationID: req.ConversationID,
		MessageID:      req.MessageID,
	}))
	return nil
}

// mapToStruct converts interface{} to a specific struct using JSON marshaling
func mapToStruct(data interface{}, target interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}
