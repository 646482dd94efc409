// internal/domain/lead/entity.go
package lead

import (
	"time"

	"github.com/lib/pq"
)

// Qualification is the categorical intent signal assigned by upstream scoring.
// It is immutable once issued; re-scoring produces a new lead evaluation.
type Qualification string

const (
	QualificationUrgent     Qualification = "urgent"
	QualificationInterested Qualification = "interested"
	QualificationInquiry    Qualification = "inquiry"
	QualificationFollowUp   Qualification = "follow_up"
)

func (q Qualification) Valid() bool {
	switch q {
	case QualificationUrgent, QualificationInterested, QualificationInquiry, QualificationFollowUp:
		return true
	}
	return false
}

// Priority is a coarse urgency ranking, correlated with but independent of
// qualification.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank maps priority onto a total order: high(3) > medium(2) > low(1).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Lead is an unclaimed, scored customer contact awaiting an agent. A lead
// exists iff no conversation has been created from it; claiming converts it.
type Lead struct {
	ID             string `json:"id" db:"id"`
	ContactChannel string `json:"contact_channel" db:"contact_channel"`
	CustomerName   string `json:"customer_name,omitempty" db:"customer_name"`
	Interest       string `json:"interest,omitempty" db:"interest"`

	Qualification Qualification `json:"qualification" db:"qualification"`
	Score         int           `json:"score" db:"score"`
	Priority      Priority      `json:"priority" db:"priority"`

	// WaitTimeMinutes is derived from CreatedAt while the lead is unclaimed
	// and frozen at claim time.
	WaitTimeMinutes int     `json:"wait_time_minutes" db:"wait_time_minutes"`
	EstimatedValue  float64 `json:"estimated_value" db:"estimated_value"`

	Tags      pq.StringArray `json:"tags,omitempty" db:"tags"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// DerivePriority picks a priority for leads whose intake carried none.
func DerivePriority(q Qualification, score int) Priority {
	switch {
	case q == QualificationUrgent || score >= 8:
		return PriorityHigh
	case q == QualificationInterested || score >= 5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
