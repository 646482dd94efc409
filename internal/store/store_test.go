package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"leadflow-service/internal/domain/conversation"
	"leadflow-service/internal/domain/lead"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLead(id string, score int) lead.Lead {
	return lead.Lead{
		ID:             id,
		ContactChannel: "whatsapp",
		CustomerName:   "Test Customer",
		Interest:       "premium plan",
		Qualification:  lead.QualificationInterested,
		Score:          score,
		Priority:       lead.PriorityMedium,
		EstimatedValue: 100,
	}
}

func TestPutLeadGeneratesID(t *testing.T) {
	s := New()

	l, err := s.PutLead(newLead("", 5))
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.False(t, l.CreatedAt.IsZero())
}

func TestPutLeadRejectsDuplicateID(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 5))
	require.NoError(t, err)

	_, err = s.PutLead(newLead("L1", 7))
	assert.ErrorIs(t, err, lead.ErrExists)
}

func TestPutLeadRejectsIDHeldByConversation(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 5))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)

	_, err = s.PutLead(newLead("L1", 5))
	assert.ErrorIs(t, err, lead.ErrExists)
}

func TestClaimCreatesActiveConversation(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)

	conv, err := s.Claim("L1", "agent-1")
	require.NoError(t, err)

	assert.Equal(t, "L1", conv.ID)
	assert.Equal(t, "agent-1", conv.AssignedAgentID)
	assert.Equal(t, conversation.StatusActive, conv.Status)
	assert.Empty(t, conv.Messages)
	assert.False(t, conv.ClaimedAt.IsZero())

	// the lead leaves the unclaimed set in the same step
	assert.Empty(t, s.Leads())
	_, err = s.GetLead("L1")
	assert.ErrorIs(t, err, lead.ErrNotFound)
}

func TestClaimUnknownLead(t *testing.T) {
	s := New()

	_, err := s.Claim("missing", "agent-1")
	assert.ErrorIs(t, err, lead.ErrNotFound)
}

func TestClaimAlreadyClaimedLead(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)

	// a stale queue view retrying the same id loses deterministically
	_, err = s.Claim("L1", "agent-2")
	assert.ErrorIs(t, err, lead.ErrAlreadyClaimed)
}

func TestClaimExactlyOneWinner(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)

	const agents = 32
	var wg sync.WaitGroup
	results := make([]error, agents)
	winners := make([]conversation.Conversation, agents)

	start := make(chan struct{})
	for i := 0; i < agents; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			winners[i], results[i] = s.Claim("L1", fmt.Sprintf("agent-%d", i))
		}(i)
	}
	close(start)
	wg.Wait()

	var wins int
	var winner conversation.Conversation
	for i, err := range results {
		if err == nil {
			wins++
			winner = winners[i]
		} else {
			assert.ErrorIs(t, err, lead.ErrAlreadyClaimed)
		}
	}
	require.Equal(t, 1, wins)

	conv, err := s.GetConversation("L1")
	require.NoError(t, err)
	assert.Equal(t, winner.AssignedAgentID, conv.AssignedAgentID)
	assert.Empty(t, s.Leads())
}

func TestAppendMessageAssignsTotalOrder(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)

	const senders = 8
	const perSender = 25
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				_, err := s.AppendMessage("L1", conversation.AuthorAgent, fmt.Sprintf("msg %d-%d", i, j))
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	conv, err := s.GetConversation("L1")
	require.NoError(t, err)
	require.Len(t, conv.Messages, senders*perSender)

	for i := 1; i < len(conv.Messages); i++ {
		prev, cur := conv.Messages[i-1], conv.Messages[i]
		assert.Equal(t, prev.Sequence+1, cur.Sequence)
		assert.True(t, cur.Timestamp.After(prev.Timestamp),
			"timestamps must be strictly increasing")
	}
}

func TestAppendMessageTimestampNudge(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return frozen }))

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)

	// the clock never advances, so every tie must be broken by the nudge
	m1, err := s.AppendMessage("L1", conversation.AuthorCustomer, "first")
	require.NoError(t, err)
	m2, err := s.AppendMessage("L1", conversation.AuthorAgent, "second")
	require.NoError(t, err)

	assert.True(t, m2.Timestamp.After(m1.Timestamp))
	assert.Equal(t, m1.Sequence+1, m2.Sequence)
}

func TestAppendMessageOnFinishedConversation(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)
	_, err = s.Finish("L1", false)
	require.NoError(t, err)

	_, err = s.AppendMessage("L1", conversation.AuthorCustomer, "hello?")
	assert.ErrorIs(t, err, conversation.ErrClosed)
}

func TestAppendMessageOnPausedConversation(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)
	_, err = s.Transition("L1", conversation.StatusPaused)
	require.NoError(t, err)

	// paused holds the conversation, it does not close it
	_, err = s.AppendMessage("L1", conversation.AuthorCustomer, "still here")
	assert.NoError(t, err)
}

func TestAdvanceDeliveryForwardOnly(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)
	msg, err := s.AppendMessage("L1", conversation.AuthorCustomer, "hello")
	require.NoError(t, err)
	assert.Equal(t, conversation.DeliverySent, msg.DeliveryStatus)

	msg, err = s.AdvanceDelivery("L1", msg.ID, conversation.DeliveryRead)
	require.NoError(t, err)
	assert.Equal(t, conversation.DeliveryRead, msg.DeliveryStatus)

	// a late delivered receipt must not regress read
	msg, err = s.AdvanceDelivery("L1", msg.ID, conversation.DeliveryDelivered)
	require.NoError(t, err)
	assert.Equal(t, conversation.DeliveryRead, msg.DeliveryStatus)

	// idempotent
	msg, err = s.AdvanceDelivery("L1", msg.ID, conversation.DeliveryRead)
	require.NoError(t, err)
	assert.Equal(t, conversation.DeliveryRead, msg.DeliveryStatus)
}

func TestAdvanceDeliveryUnknownMessage(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)

	_, err = s.AdvanceDelivery("L1", "missing", conversation.DeliveryRead)
	assert.ErrorIs(t, err, conversation.ErrMessageNotFound)
}

func TestTransitionStateMachine(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)

	conv, err := s.Transition("L1", conversation.StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, conversation.StatusPaused, conv.Status)

	conv, err = s.Transition("L1", conversation.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, conversation.StatusActive, conv.Status)

	conv, err = s.Transition("L1", conversation.StatusFinished)
	require.NoError(t, err)
	assert.Equal(t, conversation.StatusFinished, conv.Status)
	require.NotNil(t, conv.FinishedAt)

	// finished is terminal
	_, err = s.Transition("L1", conversation.StatusActive)
	assert.ErrorIs(t, err, conversation.ErrInvalidTransition)
	_, err = s.Transition("L1", conversation.StatusPaused)
	assert.ErrorIs(t, err, conversation.ErrInvalidTransition)
}

func TestTransitionRejectsActiveToActive(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)

	_, err = s.Transition("L1", conversation.StatusActive)
	assert.ErrorIs(t, err, conversation.ErrInvalidTransition)
}

func TestFinishRecordsSale(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)

	conv, err := s.Finish("L1", true)
	require.NoError(t, err)
	assert.Equal(t, conversation.StatusFinished, conv.Status)
	assert.True(t, conv.Sale)
	require.NotNil(t, conv.FinishedAt)

	_, err = s.Finish("L1", false)
	assert.ErrorIs(t, err, conversation.ErrInvalidTransition)
}

func TestWaitTimeGrowsWhileUnclaimed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	leads := s.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, 30, leads[0].WaitTimeMinutes)

	// claim freezes the wait
	now = now.Add(15 * time.Minute)
	conv, err := s.Claim("L1", "agent-1")
	require.NoError(t, err)
	assert.Equal(t, 45, conv.WaitTimeMinutes)

	now = now.Add(time.Hour)
	conv, err = s.GetConversation("L1")
	require.NoError(t, err)
	assert.Equal(t, 45, conv.WaitTimeMinutes)
}

func TestActiveConversationsScopedToAgent(t *testing.T) {
	s := New()

	for i, agent := range []string{"agent-1", "agent-2", "agent-1"} {
		id := fmt.Sprintf("L%d", i+1)
		_, err := s.PutLead(newLead(id, 5))
		require.NoError(t, err)
		_, err = s.Claim(id, agent)
		require.NoError(t, err)
	}
	_, err := s.Finish("L3", false)
	require.NoError(t, err)

	assert.Len(t, s.ActiveConversations(""), 2)
	assert.Len(t, s.ActiveConversations("agent-1"), 1)
	assert.Len(t, s.ActiveConversations("agent-2"), 1)
	assert.Empty(t, s.ActiveConversations("agent-3"))
}

func TestGetConversationReturnsDeepCopy(t *testing.T) {
	s := New()

	_, err := s.PutLead(newLead("L1", 9))
	require.NoError(t, err)
	_, err = s.Claim("L1", "agent-1")
	require.NoError(t, err)
	_, err = s.AppendMessage("L1", conversation.AuthorCustomer, "hello")
	require.NoError(t, err)

	conv, err := s.GetConversation("L1")
	require.NoError(t, err)
	conv.Messages[0].Content = "mutated"

	fresh, err := s.GetConversation("L1")
	require.NoError(t, err)
	assert.Equal(t, "hello", fresh.Messages[0].Content)
}
