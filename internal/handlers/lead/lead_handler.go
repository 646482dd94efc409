// internal/handlers/lead/lead_handler.go
package lead

import (
	"errors"
	"net/http"

	leaddom "leadflow-service/internal/domain/lead"
	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/response"
	"leadflow-service/internal/service/attendance"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	queueService *attendance.QueueService
	coordinator  *attendance.Coordinator
}

func NewLeadHandler(queueService *attendance.QueueService, coordinator *attendance.Coordinator) *LeadHandler {
	return &LeadHandler{
		queueService: queueService,
		coordinator:  coordinator,
	}
}

// CreateLead registers an incoming lead in the waiting queue
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req leaddom.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.queueService.CreateLead(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, leaddom.ErrExists) {
			response.Conflict(c, "lead already exists", err)
			return
		}
		response.ValidationError(c, "failed to create lead", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead created successfully", result)
}

// ListLeads returns the filtered, sorted view of unclaimed leads
func (h *LeadHandler) ListLeads(c *gin.Context) {
	var filters leaddom.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.queueService.ListLeads(c.Request.Context(), &filters)
	if err != nil {
		response.ValidationError(c, "failed to list leads", err)
		return
	}

	response.Success(c, http.StatusOK, "leads retrieved successfully", result)
}

// Claim assigns a lead to the authenticated agent and opens a conversation.
// Exactly one agent wins a contested lead; everyone else gets a conflict.
func (h *LeadHandler) Claim(c *gin.Context) {
	leadID := c.Param("id")
	agentID := middleware.MustGetAgentID(c)

	conv, err := h.coordinator.Claim(c.Request.Context(), leadID, agentID)
	if err != nil {
		switch {
		case errors.Is(err, leaddom.ErrAlreadyClaimed):
			response.Conflict(c, "lead already claimed", err)
		case errors.Is(err, leaddom.ErrNotFound):
			response.NotFound(c, "lead not found", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to claim lead", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "lead claimed successfully", conv)
}
