// internal/service/attendance/metrics.go
package attendance

import (
	"context"
	"time"

	"leadflow-service/internal/domain/conversation"
	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/domain/metrics"
	"leadflow-service/internal/store"
)

// MetricsService derives summary statistics from the current record set. Every
// snapshot is a fresh O(n) pass over leads and conversations; no cached
// aggregate is ever reused as a sub-total.
type MetricsService struct {
	store            *store.Store
	conversionWindow time.Duration
	now              func() time.Time
}

func NewMetricsService(st *store.Store, conversionWindow time.Duration) *MetricsService {
	return &MetricsService{
		store:            st,
		conversionWindow: conversionWindow,
		now:              time.Now,
	}
}

// Snapshot recomputes the metrics from scratch. Computing it twice without an
// intervening mutation yields the same value.
func (s *MetricsService) Snapshot(ctx context.Context) metrics.Snapshot {
	leads := s.store.Leads()
	convs := s.store.Conversations()

	var snap metrics.Snapshot
	var scoreSum, waitSum int

	for _, l := range leads {
		scoreSum += l.Score
		waitSum += l.WaitTimeMinutes
		snap.TotalPotentialValue += l.EstimatedValue
		if l.Qualification == lead.QualificationUrgent {
			snap.UrgentLeads++
		}
	}

	var attendable, finished, finishedWithSale int
	windowStart := s.now().Add(-s.conversionWindow)
	for _, c := range convs {
		switch c.Status {
		case conversation.StatusActive:
			snap.ActiveConversations++
			attendable++
			snap.TotalPotentialValue += c.EstimatedValue
		case conversation.StatusPaused:
			// paused is attendable-but-inactive: counted in totals, not in
			// active conversations
			attendable++
			snap.TotalPotentialValue += c.EstimatedValue
		case conversation.StatusFinished:
			if c.FinishedAt != nil && c.FinishedAt.After(windowStart) {
				finished++
				if c.Sale {
					finishedWithSale++
				}
			}
		}
	}

	snap.TotalLeads = len(leads) + attendable
	if len(leads) > 0 {
		snap.AverageScore = float64(scoreSum) / float64(len(leads))
		snap.AverageWaitMinutes = float64(waitSum) / float64(len(leads))
	}
	if finished > 0 {
		snap.ConversionRate = float64(finishedWithSale) / float64(finished)
	}
	return snap
}
