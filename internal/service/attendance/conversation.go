// internal/service/attendance/conversation.go
package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadflow-service/internal/domain/conversation"
	"leadflow-service/internal/store"

	"go.uber.org/zap"
)

// Archiver persists finished conversations. It is a collaborator: failures
// are logged and never propagated, and the in-process store stays the source
// of truth.
type Archiver interface {
	Archive(ctx context.Context, conv conversation.Conversation) error
}

// ConversationService governs the attendable unit after a claim: message
// appends, delivery-status advancement and the status state machine.
type ConversationService struct {
	store   *store.Store
	metrics *MetricsService
	archive Archiver
	events  Events
	logger  *zap.Logger
}

func NewConversationService(st *store.Store, metrics *MetricsService, archive Archiver, events Events, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		store:   st,
		metrics: metrics,
		archive: archive,
		events:  events,
		logger:  logger,
	}
}

func (s *ConversationService) GetConversation(ctx context.Context, id string) (conversation.Conversation, error) {
	return s.store.GetConversation(id)
}

// ListActive returns attendable conversations, optionally scoped to one agent.
func (s *ConversationService) ListActive(ctx context.Context, agentID string) *conversation.ListResponse {
	convs := s.store.ActiveConversations(agentID)
	return &conversation.ListResponse{Conversations: convs, Total: len(convs)}
}

// SendMessage appends a message to an attendable conversation. Empty or
// whitespace-only content is rejected; a finished conversation rejects every
// append.
func (s *ConversationService) SendMessage(ctx context.Context, convID string, req *conversation.SendMessageRequest) (conversation.Message, error) {
	kind := conversation.AuthorKind(req.AuthorKind)
	if !kind.Valid() {
		return conversation.Message{}, fmt.Errorf("%w: %q", conversation.ErrInvalidAuthor, req.AuthorKind)
	}
	if strings.TrimSpace(req.Content) == "" {
		return conversation.Message{}, conversation.ErrEmptyMessage
	}

	msg, err := s.store.AppendMessage(convID, kind, req.Content)
	if err != nil {
		return conversation.Message{}, err
	}

	if s.events != nil {
		if conv, err := s.store.GetConversation(convID); err == nil {
			s.events.MessageAppended(&conv, msg)
		}
		s.events.MetricsUpdated(s.metrics.Snapshot(ctx))
	}
	return msg, nil
}

// MarkDelivered advances a message to delivered. Idempotent, forward-only.
func (s *ConversationService) MarkDelivered(ctx context.Context, convID, messageID string) (conversation.Message, error) {
	return s.store.AdvanceDelivery(convID, messageID, conversation.DeliveryDelivered)
}

// MarkRead advances a message to read. Idempotent, forward-only.
func (s *ConversationService) MarkRead(ctx context.Context, convID, messageID string) (conversation.Message, error) {
	return s.store.AdvanceDelivery(convID, messageID, conversation.DeliveryRead)
}

// Pause suspends an active conversation.
func (s *ConversationService) Pause(ctx context.Context, convID string) (conversation.Conversation, error) {
	return s.transition(ctx, convID, conversation.StatusPaused)
}

// Resume reactivates a paused conversation.
func (s *ConversationService) Resume(ctx context.Context, convID string) (conversation.Conversation, error) {
	return s.transition(ctx, convID, conversation.StatusActive)
}

// Finish terminates a conversation, records the sale outcome and hands the
// record to the archive collaborator in the background.
func (s *ConversationService) Finish(ctx context.Context, convID string, sale bool) (conversation.Conversation, error) {
	conv, err := s.store.Finish(convID, sale)
	if err != nil {
		return conversation.Conversation{}, err
	}

	s.logger.Info("conversation finished",
		zap.String("conversation_id", convID),
		zap.String("agent_id", conv.AssignedAgentID),
		zap.Bool("sale", sale),
	)

	if s.archive != nil {
		go s.archiveFinished(conv)
	}
	if s.events != nil {
		s.events.ConversationUpdated(&conv)
		s.events.MetricsUpdated(s.metrics.Snapshot(ctx))
	}
	return conv, nil
}

func (s *ConversationService) transition(ctx context.Context, convID string, target conversation.Status) (conversation.Conversation, error) {
	conv, err := s.store.Transition(convID, target)
	if err != nil {
		return conversation.Conversation{}, err
	}

	s.logger.Info("conversation status changed",
		zap.String("conversation_id", convID),
		zap.String("status", string(target)),
	)

	if s.events != nil {
		s.events.ConversationUpdated(&conv)
		s.events.MetricsUpdated(s.metrics.Snapshot(ctx))
	}
	return conv, nil
}

func (s *ConversationService) archiveFinished(conv conversation.Conversation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.archive.Archive(ctx, conv); err != nil {
		s.logger.Error("failed to archive conversation",
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
	}
}
