// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	"leadflow-service/internal/domain/conversation"
	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/domain/metrics"
	wstypes "leadflow-service/internal/domain/websocket"
	"leadflow-service/internal/pkg/jwt"
	"leadflow-service/internal/pkg/presence"

	"go.uber.org/zap"
)

// Hub fans record-set changes out to connected agents. Queue and metrics
// events go to every subscriber; conversation events go only to the assigned
// agent. The hub is delivery-only: dropping every event leaves the core
// correct, since callers can always re-query.
type Hub struct {
	// Registered clients by agent ID
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	Register   chan *Client
	unregister chan *Client

	// Broadcasting
	broadcast chan *BroadcastMessage

	// Handler registry for modular message handling
	handlerRegistry *HandlerRegistry

	jwtVerifier *jwt.Verifier
	tracker     *presence.Tracker
	logger      *zap.Logger
}

type BroadcastMessage struct {
	// AgentIDs nil means broadcast to all subscribers of the channel.
	AgentIDs []string
	Channel  wstypes.ChannelType
	Message  *wstypes.WSMessage
}

func NewHub(jwtVerifier *jwt.Verifier, tracker *presence.Tracker, logger *zap.Logger) *Hub {
	return &Hub{
		clients:         make(map[string]map[*Client]bool),
		Register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		handlerRegistry: NewHandlerRegistry(),
		jwtVerifier:     jwtVerifier,
		tracker:         tracker,
		logger:          logger,
	}
}

// AuthenticateClient validates the agent token and returns connection auth.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.jwtVerifier.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &ClientAuth{
		AgentID:     claims.AgentID,
		DisplayName: claims.DisplayName,
		Roles:       claims.Roles,
	}, nil
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage processes a message from a client using registered handlers
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return nil // falls through to the client's built-in handling
	}
	return handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.dispatch(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.clients[client.agentID] == nil {
		h.clients[client.agentID] = make(map[*Client]bool)
	}
	h.clients[client.agentID][client] = true
	conns := len(h.clients[client.agentID])
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.String("agent_id", client.agentID),
		zap.Int("connections", conns),
	)

	if h.tracker != nil {
		_ = h.tracker.Heartbeat(context.Background(), &presence.AgentPresence{
			AgentID:     client.agentID,
			DisplayName: client.displayName,
			Connections: conns,
		})
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"agent_id": client.agentID,
		"roles":    client.roles,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	remaining := -1
	if clients, ok := h.clients[client.agentID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()
			remaining = len(clients)
			if remaining == 0 {
				delete(h.clients, client.agentID)
			}
		}
	}
	h.mu.Unlock()

	if remaining == 0 && h.tracker != nil {
		_ = h.tracker.Drop(context.Background(), client.agentID)
	}

	h.logger.Info("websocket client disconnected",
		zap.String("agent_id", client.agentID),
	)
}

func (h *Hub) dispatch(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.AgentIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
		return
	}

	for _, agentID := range msg.AgentIDs {
		if clients, ok := h.clients[agentID]; ok {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
	}
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}

// Event sink for the attendance services. Queue and metrics changes fan out
// to everyone; conversation changes only to the assigned agent.

func (h *Hub) LeadCreated(l lead.Lead) {
	h.broadcast <- &BroadcastMessage{
		Channel: wstypes.ChannelQueue,
		Message: wstypes.NewMessage(wstypes.EventTypeLeadNew, l),
	}
}

func (h *Hub) LeadClaimed(leadID, agentID string) {
	h.broadcast <- &BroadcastMessage{
		Channel: wstypes.ChannelQueue,
		Message: wstypes.NewMessage(wstypes.EventTypeLeadClaimed, &wstypes.LeadClaimedData{
			LeadID:  leadID,
			AgentID: agentID,
		}),
	}
}

func (h *Hub) MessageAppended(conv *conversation.Conversation, msg conversation.Message) {
	h.broadcast <- &BroadcastMessage{
		AgentIDs: []string{conv.AssignedAgentID},
		Channel:  wstypes.ChannelConversations,
		Message:  wstypes.NewMessage(wstypes.EventTypeConversationMessage, msg),
	}
}

func (h *Hub) ConversationUpdated(conv *conversation.Conversation) {
	h.broadcast <- &BroadcastMessage{
		AgentIDs: []string{conv.AssignedAgentID},
		Channel:  wstypes.ChannelConversations,
		Message:  wstypes.NewMessage(wstypes.EventTypeConversationStatus, conv),
	}
}

func (h *Hub) MetricsUpdated(snap metrics.Snapshot) {
	h.broadcast <- &BroadcastMessage{
		Channel: wstypes.ChannelMetrics,
		Message: wstypes.NewMessage(wstypes.EventTypeMetricsUpdate, snap),
	}
}
