// internal/service/attendance/coordinator.go
package attendance

import (
	"context"
	"time"

	"leadflow-service/internal/domain/conversation"
	"leadflow-service/internal/store"

	"go.uber.org/zap"
)

// Coordinator arbitrates concurrent claim attempts. Many agents race on the
// same queue view; the store's per-lead sequence point decides the winner and
// the coordinator turns the outcome into a conversation plus the follow-up
// fan-out.
type Coordinator struct {
	store   *store.Store
	metrics *MetricsService
	intake  Intake
	events  Events
	logger  *zap.Logger
}

func NewCoordinator(st *store.Store, metrics *MetricsService, intake Intake, events Events, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:   st,
		metrics: metrics,
		intake:  intake,
		events:  events,
		logger:  logger,
	}
}

// Claim converts a lead into a conversation owned by agentID. Exactly one of
// any set of concurrent attempts on the same lead succeeds; losers receive
// lead.ErrAlreadyClaimed without any state change and are expected to refresh
// their queue view rather than retry the same lead.
func (c *Coordinator) Claim(ctx context.Context, leadID, agentID string) (conversation.Conversation, error) {
	conv, err := c.store.Claim(leadID, agentID)
	if err != nil {
		return conversation.Conversation{}, err
	}

	c.logger.Info("lead claimed",
		zap.String("lead_id", leadID),
		zap.String("agent_id", agentID),
	)

	if c.intake != nil {
		go c.tombstoneLead(leadID, agentID)
	}

	if c.events != nil {
		c.events.LeadClaimed(leadID, agentID)
		c.events.MetricsUpdated(c.metrics.Snapshot(ctx))
	}
	return conv, nil
}

func (c *Coordinator) tombstoneLead(leadID, agentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.intake.MarkClaimed(ctx, leadID, agentID); err != nil {
		c.logger.Error("failed to tombstone claimed lead",
			zap.String("lead_id", leadID),
			zap.Error(err),
		)
	}
}
