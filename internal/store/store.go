// internal/store/store.go
package store

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"leadflow-service/internal/domain/conversation"
	"leadflow-service/internal/domain/lead"

	"github.com/oklog/ulid/v2"
)

// Store is the single authority over lead and conversation records. All
// mutation goes through it so the lead/conversation exclusivity invariant is
// enforced centrally instead of by convention at call sites.
//
// Claim arbitration is serialized per lead id; appends and transitions are
// serialized per conversation. Reads are snapshot copies and never block
// writes on unrelated records.
type Store struct {
	mu    sync.RWMutex
	leads map[string]*leadRecord
	convs map[string]*convRecord

	now func() time.Time
}

type leadRecord struct {
	// mu serializes claim attempts for this lead only.
	mu      sync.Mutex
	claimed atomic.Bool
	lead    lead.Lead
}

type convRecord struct {
	// mu serializes appends and status transitions for this conversation.
	mu     sync.Mutex
	conv   conversation.Conversation
	seq    int64
	lastTS time.Time
}

type Option func(*Store)

// WithClock overrides the wall clock, used by tests for deterministic
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		leads: make(map[string]*leadRecord),
		convs: make(map[string]*convRecord),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutLead registers an unclaimed lead. The id must not collide with an
// existing lead or conversation; the two are mutually exclusive views of one
// contact.
func (s *Store) PutLead(l lead.Lead) (lead.Lead, error) {
	if l.ID == "" {
		l.ID = ulid.Make().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[l.ID]; ok {
		return lead.Lead{}, lead.ErrExists
	}
	if _, ok := s.convs[l.ID]; ok {
		return lead.Lead{}, lead.ErrExists
	}

	s.leads[l.ID] = &leadRecord{lead: l}
	out := l
	out.WaitTimeMinutes = s.waitMinutes(l)
	return out, nil
}

// Leads returns a snapshot of the unclaimed set with wait times refreshed.
// The result is a copy; callers may filter and sort it freely.
func (s *Store) Leads() []lead.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]lead.Lead, 0, len(s.leads))
	for _, rec := range s.leads {
		if rec.claimed.Load() {
			continue
		}
		l := rec.lead
		l.WaitTimeMinutes = s.waitMinutes(l)
		out = append(out, l)
	}
	return out
}

func (s *Store) GetLead(id string) (lead.Lead, error) {
	s.mu.RLock()
	rec, ok := s.leads[id]
	s.mu.RUnlock()

	if !ok || rec.claimed.Load() {
		return lead.Lead{}, lead.ErrNotFound
	}
	l := rec.lead
	l.WaitTimeMinutes = s.waitMinutes(l)
	return l, nil
}

// Claim arbitrates concurrent claim attempts on a lead. Exactly one caller
// observes the unclaimed state and wins; all others get ErrAlreadyClaimed.
// The winner's lead is removed from the unclaimed set, its wait time frozen,
// and a conversation owned by agentID is created in one atomic unit.
func (s *Store) Claim(leadID, agentID string) (conversation.Conversation, error) {
	s.mu.RLock()
	rec, ok := s.leads[leadID]
	if !ok {
		_, wasClaimed := s.convs[leadID]
		s.mu.RUnlock()
		if wasClaimed {
			return conversation.Conversation{}, lead.ErrAlreadyClaimed
		}
		return conversation.Conversation{}, lead.ErrNotFound
	}
	s.mu.RUnlock()

	// Per-lead sequence point: attempts on different leads never contend here.
	rec.mu.Lock()
	if rec.claimed.Load() {
		rec.mu.Unlock()
		return conversation.Conversation{}, lead.ErrAlreadyClaimed
	}
	rec.claimed.Store(true)
	l := rec.lead
	rec.mu.Unlock()

	now := s.now()
	conv := conversation.Conversation{
		ID:              l.ID,
		AssignedAgentID: agentID,
		// new is superseded by active within the claim itself.
		Status:          conversation.StatusActive,
		ContactChannel:  l.ContactChannel,
		CustomerName:    l.CustomerName,
		Interest:        l.Interest,
		Qualification:   l.Qualification,
		Score:           l.Score,
		EstimatedValue:  l.EstimatedValue,
		WaitTimeMinutes: s.waitMinutes(l),
		Messages:        []conversation.Message{},
		ClaimedAt:       now,
		UpdatedAt:       now,
	}

	s.mu.Lock()
	delete(s.leads, leadID)
	s.convs[leadID] = &convRecord{conv: conv}
	s.mu.Unlock()

	return conv, nil
}

// GetConversation returns a deep copy of a conversation and its messages.
func (s *Store) GetConversation(id string) (conversation.Conversation, error) {
	s.mu.RLock()
	rec, ok := s.convs[id]
	s.mu.RUnlock()
	if !ok {
		return conversation.Conversation{}, conversation.ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return copyConv(&rec.conv), nil
}

// Conversations returns deep copies of every conversation, finished included,
// ordered by claim time.
func (s *Store) Conversations() []conversation.Conversation {
	s.mu.RLock()
	recs := make([]*convRecord, 0, len(s.convs))
	for _, rec := range s.convs {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	out := make([]conversation.Conversation, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, copyConv(&rec.conv))
		rec.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimedAt.Before(out[j].ClaimedAt) })
	return out
}

// ActiveConversations returns attendable (active or paused) conversations,
// optionally scoped to one agent.
func (s *Store) ActiveConversations(agentID string) []conversation.Conversation {
	all := s.Conversations()
	out := make([]conversation.Conversation, 0, len(all))
	for _, c := range all {
		if !c.Status.Attendable() {
			continue
		}
		if agentID != "" && c.AssignedAgentID != agentID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AppendMessage appends a message with a strictly increasing timestamp.
// Wall-clock ties are broken by nudging the timestamp past the previous one,
// backed by a monotonic sequence, so the non-decreasing order invariant is
// exact even under clock coarseness. Only finished conversations reject
// appends.
func (s *Store) AppendMessage(convID string, kind conversation.AuthorKind, content string) (conversation.Message, error) {
	s.mu.RLock()
	rec, ok := s.convs[convID]
	s.mu.RUnlock()
	if !ok {
		return conversation.Message{}, conversation.ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if !rec.conv.Status.Attendable() {
		return conversation.Message{}, conversation.ErrClosed
	}

	ts := s.now()
	if !ts.After(rec.lastTS) {
		ts = rec.lastTS.Add(time.Nanosecond)
	}
	rec.lastTS = ts
	rec.seq++

	msg := conversation.Message{
		ID:             ulid.Make().String(),
		ConversationID: convID,
		AuthorKind:     kind,
		Content:        content,
		Timestamp:      ts,
		Sequence:       rec.seq,
		DeliveryStatus: conversation.DeliverySent,
	}
	rec.conv.Messages = append(rec.conv.Messages, msg)
	rec.conv.LastMessageAt = &msg.Timestamp
	rec.conv.UpdatedAt = ts

	return msg, nil
}

// AdvanceDelivery moves a message's delivery status forward. It is idempotent
// and never regresses: a target at or behind the current status is a no-op.
func (s *Store) AdvanceDelivery(convID, messageID string, target conversation.DeliveryStatus) (conversation.Message, error) {
	s.mu.RLock()
	rec, ok := s.convs[convID]
	s.mu.RUnlock()
	if !ok {
		return conversation.Message{}, conversation.ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	for i := range rec.conv.Messages {
		if rec.conv.Messages[i].ID != messageID {
			continue
		}
		if target.Rank() > rec.conv.Messages[i].DeliveryStatus.Rank() {
			rec.conv.Messages[i].DeliveryStatus = target
		}
		return rec.conv.Messages[i], nil
	}
	return conversation.Message{}, conversation.ErrMessageNotFound
}

// Transition advances the conversation state machine. Illegal steps,
// including anything out of finished, fail with ErrInvalidTransition.
func (s *Store) Transition(convID string, target conversation.Status) (conversation.Conversation, error) {
	s.mu.RLock()
	rec, ok := s.convs[convID]
	s.mu.RUnlock()
	if !ok {
		return conversation.Conversation{}, conversation.ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if !rec.conv.Status.CanTransition(target) {
		return conversation.Conversation{}, conversation.ErrInvalidTransition
	}

	now := s.now()
	rec.conv.Status = target
	rec.conv.UpdatedAt = now
	if target == conversation.StatusFinished {
		rec.conv.FinishedAt = &now
	}
	return copyConv(&rec.conv), nil
}

// Finish is a terminal transition that also records whether the attendance
// converted into a sale.
func (s *Store) Finish(convID string, sale bool) (conversation.Conversation, error) {
	s.mu.RLock()
	rec, ok := s.convs[convID]
	s.mu.RUnlock()
	if !ok {
		return conversation.Conversation{}, conversation.ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if !rec.conv.Status.CanTransition(conversation.StatusFinished) {
		return conversation.Conversation{}, conversation.ErrInvalidTransition
	}

	now := s.now()
	rec.conv.Status = conversation.StatusFinished
	rec.conv.Sale = sale
	rec.conv.UpdatedAt = now
	rec.conv.FinishedAt = &now
	return copyConv(&rec.conv), nil
}

func (s *Store) waitMinutes(l lead.Lead) int {
	m := int(s.now().Sub(l.CreatedAt) / time.Minute)
	if m < l.WaitTimeMinutes {
		return l.WaitTimeMinutes
	}
	return m
}

func copyConv(c *conversation.Conversation) conversation.Conversation {
	out := *c
	out.Messages = make([]conversation.Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	if c.LastMessageAt != nil {
		t := *c.LastMessageAt
		out.LastMessageAt = &t
	}
	if c.FinishedAt != nil {
		t := *c.FinishedAt
		out.FinishedAt = &t
	}
	return out
}
