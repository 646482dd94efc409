// internal/handlers/agent/agent_handler.go
package agent

import (
	"net/http"
	"time"

	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/presence"
	"leadflow-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AgentHandler struct {
	tracker *presence.Tracker
}

func NewAgentHandler(tracker *presence.Tracker) *AgentHandler {
	return &AgentHandler{
		tracker: tracker,
	}
}

// Heartbeat refreshes the authenticated agent's presence TTL
func (h *AgentHandler) Heartbeat(c *gin.Context) {
	agentID := middleware.MustGetAgentID(c)

	p := &presence.AgentPresence{
		AgentID:     agentID,
		DisplayName: middleware.GetDisplayName(c),
		LastSeenAt:  time.Now().UTC(),
	}
	if err := h.tracker.Heartbeat(c.Request.Context(), p); err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to record heartbeat", err)
		return
	}

	response.Success(c, http.StatusOK, "heartbeat recorded", p)
}

// Online lists agent IDs with a live presence entry
func (h *AgentHandler) Online(c *gin.Context) {
	agents, err := h.tracker.Online(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list online agents", err)
		return
	}

	response.Success(c, http.StatusOK, "online agents retrieved successfully", gin.H{
		"agents": agents,
		"total":  len(agents),
	})
}
