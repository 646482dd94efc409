// internal/service/attendance/queue.go
package attendance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/store"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// View is a pure projection of a lead set: filter conjunction, then a stable
// order for the given sort key. Repeated calls with identical inputs produce
// identical output; the input slice is never mutated.
func View(leads []lead.Lead, filter lead.Filter, key lead.SortKey) []lead.Lead {
	out := make([]lead.Lead, 0, len(leads))
	for _, l := range leads {
		if matches(l, filter) {
			out = append(out, l)
		}
	}

	switch key {
	case lead.SortByScore:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Score != out[j].Score {
				return out[i].Score > out[j].Score
			}
			return out[i].WaitTimeMinutes < out[j].WaitTimeMinutes
		})
	case lead.SortByWaitTime:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].WaitTimeMinutes < out[j].WaitTimeMinutes
		})
	case lead.SortByEstimatedValue:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EstimatedValue > out[j].EstimatedValue
		})
	case lead.SortByPriority:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Priority.Rank() != out[j].Priority.Rank() {
				return out[i].Priority.Rank() > out[j].Priority.Rank()
			}
			return out[i].WaitTimeMinutes < out[j].WaitTimeMinutes
		})
	}
	return out
}

func matches(l lead.Lead, f lead.Filter) bool {
	if f.Qualification != "" && l.Qualification != f.Qualification {
		return false
	}
	if f.Priority != "" && l.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(l.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(l.Interest), needle) &&
			!strings.Contains(strings.ToLower(l.ContactChannel), needle) {
			return false
		}
	}
	return true
}

// Intake persists leads outside the in-process store so the queue can be
// reseeded after a restart. Like Archiver it is a collaborator: failures are
// logged and never propagated.
type Intake interface {
	Insert(ctx context.Context, l *lead.Lead) error
	MarkClaimed(ctx context.Context, leadID, agentID string) error
}

// QueueService fronts the unclaimed lead set: intake on one side, filtered
// and sorted views on the other.
type QueueService struct {
	store  *store.Store
	intake Intake
	events Events
	logger *zap.Logger
}

func NewQueueService(st *store.Store, intake Intake, events Events, logger *zap.Logger) *QueueService {
	return &QueueService{
		store:  st,
		intake: intake,
		events: events,
		logger: logger,
	}
}

// CreateLead validates and registers an inbound lead. Qualification and score
// are immutable after intake; priority is derived when the upstream scorer
// did not assign one.
func (s *QueueService) CreateLead(ctx context.Context, req *lead.CreateLeadRequest) (lead.Lead, error) {
	q := lead.Qualification(req.Qualification)
	if !q.Valid() {
		return lead.Lead{}, fmt.Errorf("invalid qualification %q", req.Qualification)
	}
	if req.Score < 0 || req.Score > 10 {
		return lead.Lead{}, fmt.Errorf("score %d out of range [0,10]", req.Score)
	}
	if req.EstimatedValue < 0 {
		return lead.Lead{}, fmt.Errorf("estimated value must be non-negative")
	}

	p := lead.Priority(req.Priority)
	if req.Priority == "" {
		p = lead.DerivePriority(q, req.Score)
	} else if !p.Valid() {
		return lead.Lead{}, fmt.Errorf("invalid priority %q", req.Priority)
	}

	l, err := s.store.PutLead(lead.Lead{
		ID:             req.ID,
		ContactChannel: req.ContactChannel,
		CustomerName:   req.CustomerName,
		Interest:       req.Interest,
		Qualification:  q,
		Score:          req.Score,
		Priority:       p,
		EstimatedValue: req.EstimatedValue,
		Tags:           pq.StringArray(req.Tags),
	})
	if err != nil {
		return lead.Lead{}, err
	}

	s.logger.Info("lead created",
		zap.String("lead_id", l.ID),
		zap.String("qualification", string(l.Qualification)),
		zap.Int("score", l.Score),
	)

	if s.intake != nil {
		go s.persistLead(l)
	}

	if s.events != nil {
		s.events.LeadCreated(l)
	}
	return l, nil
}

// ListLeads returns the current unclaimed set through View. The snapshot may
// be stale by the time a caller acts on it; Claim is the source of truth.
func (s *QueueService) ListLeads(ctx context.Context, filters *lead.ListFilters) (*lead.ListResponse, error) {
	f := lead.Filter{
		Qualification: lead.Qualification(filters.Qualification),
		Priority:      lead.Priority(filters.Priority),
		Search:        filters.Search,
	}
	key := lead.SortKey(filters.SortBy)
	if filters.SortBy == "" {
		key = lead.SortByScore
	}
	if !key.Valid() {
		return nil, fmt.Errorf("invalid sort key %q", filters.SortBy)
	}

	leads := View(s.store.Leads(), f, key)
	return &lead.ListResponse{Leads: leads, Total: len(leads)}, nil
}

func (s *QueueService) persistLead(l lead.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.intake.Insert(ctx, &l); err != nil {
		s.logger.Error("failed to persist lead",
			zap.String("lead_id", l.ID),
			zap.Error(err),
		)
	}
}
