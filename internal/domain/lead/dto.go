// internal/domain/lead/dto.go
package lead

// SortKey selects the ordering of a queue view. It is a closed enumeration so
// that View stays total and exhaustively testable.
type SortKey string

const (
	SortByScore          SortKey = "score"
	SortByWaitTime       SortKey = "waitTime"
	SortByEstimatedValue SortKey = "estimatedValue"
	SortByPriority       SortKey = "priority"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortByScore, SortByWaitTime, SortByEstimatedValue, SortByPriority:
		return true
	}
	return false
}

// Filter is a conjunction over qualification, priority and a case-insensitive
// substring match against customer name / interest. The zero value passes
// every lead through.
type Filter struct {
	Qualification Qualification `form:"qualification"`
	Priority      Priority      `form:"priority"`
	Search        string        `form:"search"`
}

type CreateLeadRequest struct {
	ID             string   `json:"id"`
	ContactChannel string   `json:"contact_channel" binding:"required,max=64"`
	CustomerName   string   `json:"customer_name" binding:"max=255"`
	Interest       string   `json:"interest" binding:"max=255"`
	Qualification  string   `json:"qualification" binding:"required"`
	Score          int      `json:"score" binding:"min=0,max=10"`
	Priority       string   `json:"priority"`
	EstimatedValue float64  `json:"estimated_value" binding:"min=0"`
	Tags           []string `json:"tags"`
}

type ListFilters struct {
	Qualification string `form:"qualification"`
	Priority      string `form:"priority"`
	Search        string `form:"search"`
	SortBy        string `form:"sort_by" binding:"omitempty,oneof=score waitTime estimatedValue priority"`
}

type ListResponse struct {
	Leads []Lead `json:"leads"`
	Total int    `json:"total"`
}
