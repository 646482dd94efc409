package app

import (
	agentHandler "leadflow-service/internal/handlers/agent"
	conversationHandler "leadflow-service/internal/handlers/conversation"
	leadHandler "leadflow-service/internal/handlers/lead"
	metricsHandler "leadflow-service/internal/handlers/metrics"
	wsHandler "leadflow-service/internal/handlers/websocket"
	"leadflow-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	LeadHandler         *leadHandler.LeadHandler
	ConversationHandler *conversationHandler.ConversationHandler
	MetricsHandler      *metricsHandler.MetricsHandler
	AgentHandler        *agentHandler.AgentHandler
	WSHandler           *wsHandler.WebSocketHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Leads ====================
	leads := api.Group("/leads")
	leads.Use(h.AuthMiddleware.Auth())
	{
		leads.POST("", h.LeadHandler.CreateLead)
		leads.GET("", h.LeadHandler.ListLeads)
		leads.GET("/metrics", h.MetricsHandler.GetMetrics)
		leads.POST("/:id/claim", h.LeadHandler.Claim)
	}

	// ==================== Conversations ====================
	conversations := api.Group("/conversations")
	conversations.Use(h.AuthMiddleware.Auth())
	{
		conversations.GET("", h.ConversationHandler.ListActive)
		conversations.GET("/:id", h.ConversationHandler.Get)
		conversations.POST("/:id/messages", h.ConversationHandler.SendMessage)
		conversations.PUT("/:id/messages/:message_id/delivered", h.ConversationHandler.MarkDelivered)
		conversations.PUT("/:id/messages/:message_id/read", h.ConversationHandler.MarkRead)
		conversations.PUT("/:id/pause", h.ConversationHandler.Pause)
		conversations.PUT("/:id/resume", h.ConversationHandler.Resume)
		conversations.PUT("/:id/finish", h.ConversationHandler.Finish)
	}

	// ==================== Agents ====================
	agents := api.Group("/agents")
	agents.Use(h.AuthMiddleware.Auth())
	{
		agents.POST("/heartbeat", h.AgentHandler.Heartbeat)
		agents.GET("/online", h.AgentHandler.Online)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole("admin", "supervisor"))
	{
		admin.GET("/ws/stats", h.WSHandler.GetStats)
	}
}
