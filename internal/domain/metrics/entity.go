// internal/domain/metrics/entity.go
package metrics

// Snapshot is a point-in-time derived summary over current leads and
// conversations. It is always recomputed from the record set at the moment of
// query, never independently mutated.
type Snapshot struct {
	TotalLeads          int     `json:"total_leads"`
	UrgentLeads         int     `json:"urgent_leads"`
	ActiveConversations int     `json:"active_conversations"`
	AverageScore        float64 `json:"average_score"`
	AverageWaitMinutes  float64 `json:"average_wait_minutes"`
	ConversionRate      float64 `json:"conversion_rate"`
	TotalPotentialValue float64 `json:"total_potential_value"`
}
