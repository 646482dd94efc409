// internal/handlers/conversation/conversation_handler.go
package conversation

import (
	"errors"
	"io"
	"net/http"

	convdom "leadflow-service/internal/domain/conversation"
	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/response"
	"leadflow-service/internal/service/attendance"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	conversationService *attendance.ConversationService
}

func NewConversationHandler(conversationService *attendance.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
	}
}

// ListActive returns attendable conversations. Defaults to the authenticated
// agent's own; an explicit agent_id query widens or redirects the scope.
func (h *ConversationHandler) ListActive(c *gin.Context) {
	agentID := middleware.MustGetAgentID(c)
	if v, ok := c.GetQuery("agent_id"); ok {
		// explicit agent_id widens the scope; empty value means every agent
		agentID = v
	}

	result := h.conversationService.ListActive(c.Request.Context(), agentID)
	response.Success(c, http.StatusOK, "conversations retrieved successfully", result)
}

// Get returns a single conversation with its full message history
func (h *ConversationHandler) Get(c *gin.Context) {
	convID := c.Param("id")

	conv, err := h.conversationService.GetConversation(c.Request.Context(), convID)
	if err != nil {
		response.NotFound(c, "conversation not found", err)
		return
	}

	response.Success(c, http.StatusOK, "conversation retrieved successfully", conv)
}

// SendMessage appends a message to a conversation
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	convID := c.Param("id")

	var req convdom.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	msg, err := h.conversationService.SendMessage(c.Request.Context(), convID, &req)
	if err != nil {
		h.writeError(c, "failed to send message", err)
		return
	}

	response.Success(c, http.StatusCreated, "message sent successfully", msg)
}

// MarkDelivered advances a message's delivery status to delivered
func (h *ConversationHandler) MarkDelivered(c *gin.Context) {
	h.advanceDelivery(c, true)
}

// MarkRead advances a message's delivery status to read
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	h.advanceDelivery(c, false)
}

func (h *ConversationHandler) advanceDelivery(c *gin.Context, delivered bool) {
	convID := c.Param("id")
	messageID := c.Param("message_id")

	var (
		msg convdom.Message
		err error
	)
	if delivered {
		msg, err = h.conversationService.MarkDelivered(c.Request.Context(), convID, messageID)
	} else {
		msg, err = h.conversationService.MarkRead(c.Request.Context(), convID, messageID)
	}
	if err != nil {
		h.writeError(c, "failed to update delivery status", err)
		return
	}

	response.Success(c, http.StatusOK, "delivery status updated successfully", msg)
}

// Pause puts an active conversation on hold
func (h *ConversationHandler) Pause(c *gin.Context) {
	convID := c.Param("id")

	conv, err := h.conversationService.Pause(c.Request.Context(), convID)
	if err != nil {
		h.writeError(c, "failed to pause conversation", err)
		return
	}

	response.Success(c, http.StatusOK, "conversation paused successfully", conv)
}

// Resume reactivates a paused conversation
func (h *ConversationHandler) Resume(c *gin.Context) {
	convID := c.Param("id")

	conv, err := h.conversationService.Resume(c.Request.Context(), convID)
	if err != nil {
		h.writeError(c, "failed to resume conversation", err)
		return
	}

	response.Success(c, http.StatusOK, "conversation resumed successfully", conv)
}

// Finish closes a conversation, recording whether it converted to a sale
func (h *ConversationHandler) Finish(c *gin.Context) {
	convID := c.Param("id")

	// the sale flag is optional; an absent body means no sale
	var req convdom.FinishRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ValidationError(c, "invalid request", err)
		return
	}

	conv, err := h.conversationService.Finish(c.Request.Context(), convID, req.Sale)
	if err != nil {
		h.writeError(c, "failed to finish conversation", err)
		return
	}

	response.Success(c, http.StatusOK, "conversation finished successfully", conv)
}

func (h *ConversationHandler) writeError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, convdom.ErrNotFound), errors.Is(err, convdom.ErrMessageNotFound):
		response.NotFound(c, message, err)
	case errors.Is(err, convdom.ErrClosed):
		response.Gone(c, message, err)
	case errors.Is(err, convdom.ErrInvalidTransition):
		response.Conflict(c, message, err)
	case errors.Is(err, convdom.ErrEmptyMessage), errors.Is(err, convdom.ErrInvalidAuthor):
		response.ValidationError(c, message, err)
	default:
		response.Error(c, http.StatusInternalServerError, message, err)
	}
}
