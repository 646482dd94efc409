package attendance

import (
	"context"
	"testing"
	"time"

	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLead(t *testing.T, st *store.Store, id string, q lead.Qualification, score int, value float64) {
	t.Helper()
	_, err := st.PutLead(lead.Lead{
		ID:             id,
		ContactChannel: "whatsapp",
		Qualification:  q,
		Score:          score,
		Priority:       lead.PriorityMedium,
		EstimatedValue: value,
	})
	require.NoError(t, err)
}

func TestSnapshotOverQueueOnly(t *testing.T) {
	st := store.New()
	seedLead(t, st, "L1", lead.QualificationUrgent, 9, 5000)
	seedLead(t, st, "L2", lead.QualificationInterested, 5, 800)

	snap := NewMetricsService(st, 7*24*time.Hour).Snapshot(context.Background())

	assert.Equal(t, 2, snap.TotalLeads)
	assert.Equal(t, 1, snap.UrgentLeads)
	assert.Zero(t, snap.ActiveConversations)
	assert.InDelta(t, 7.0, snap.AverageScore, 1e-9)
	assert.InDelta(t, 5800.0, snap.TotalPotentialValue, 1e-9)
	assert.Zero(t, snap.ConversionRate)
}

func TestSnapshotCountsClaimedLeadsInTotals(t *testing.T) {
	st := store.New()
	seedLead(t, st, "L1", lead.QualificationUrgent, 9, 5000)
	seedLead(t, st, "L2", lead.QualificationInterested, 5, 800)
	_, err := st.Claim("L1", "agent-1")
	require.NoError(t, err)

	snap := NewMetricsService(st, 7*24*time.Hour).Snapshot(context.Background())

	// the claimed lead moved from the queue into an active conversation but
	// never left the totals
	assert.Equal(t, 2, snap.TotalLeads)
	assert.Equal(t, 1, snap.ActiveConversations)
	assert.InDelta(t, 5800.0, snap.TotalPotentialValue, 1e-9)

	// averages cover the unclaimed queue only
	assert.InDelta(t, 5.0, snap.AverageScore, 1e-9)
}

func TestSnapshotPausedConversation(t *testing.T) {
	st := store.New()
	seedLead(t, st, "L1", lead.QualificationUrgent, 9, 5000)
	_, err := st.Claim("L1", "agent-1")
	require.NoError(t, err)
	_, err = st.Transition("L1", "paused")
	require.NoError(t, err)

	snap := NewMetricsService(st, 7*24*time.Hour).Snapshot(context.Background())

	// paused counts toward totals and value but not active conversations
	assert.Equal(t, 1, snap.TotalLeads)
	assert.Zero(t, snap.ActiveConversations)
	assert.InDelta(t, 5000.0, snap.TotalPotentialValue, 1e-9)
}

func TestSnapshotConversionRate(t *testing.T) {
	st := store.New()
	for _, tc := range []struct {
		id   string
		sale bool
	}{
		{"L1", true}, {"L2", false}, {"L3", true}, {"L4", true},
	} {
		seedLead(t, st, tc.id, lead.QualificationInterested, 5, 100)
		_, err := st.Claim(tc.id, "agent-1")
		require.NoError(t, err)
		_, err = st.Finish(tc.id, tc.sale)
		require.NoError(t, err)
	}

	snap := NewMetricsService(st, 7*24*time.Hour).Snapshot(context.Background())
	assert.InDelta(t, 0.75, snap.ConversionRate, 1e-9)

	// finished conversations leave the potential value pool
	assert.Zero(t, snap.TotalPotentialValue)
	assert.Zero(t, snap.TotalLeads)
}

func TestSnapshotConversionWindowExcludesOldFinishes(t *testing.T) {
	past := time.Now().Add(-8 * 24 * time.Hour)
	st := store.New(store.WithClock(func() time.Time { return past }))

	seedLead(t, st, "L1", lead.QualificationInterested, 5, 100)
	_, err := st.Claim("L1", "agent-1")
	require.NoError(t, err)
	_, err = st.Finish("L1", true)
	require.NoError(t, err)

	snap := NewMetricsService(st, 7*24*time.Hour).Snapshot(context.Background())
	assert.Zero(t, snap.ConversionRate)
}

func TestSnapshotIsIdempotent(t *testing.T) {
	st := store.New()
	seedLead(t, st, "L1", lead.QualificationUrgent, 9, 5000)
	seedLead(t, st, "L2", lead.QualificationInquiry, 3, 200)
	_, err := st.Claim("L2", "agent-1")
	require.NoError(t, err)

	svc := NewMetricsService(st, 7*24*time.Hour)
	first := svc.Snapshot(context.Background())
	second := svc.Snapshot(context.Background())
	assert.Equal(t, first, second)
}
