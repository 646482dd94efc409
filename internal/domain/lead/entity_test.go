package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePriority(t *testing.T) {
	cases := []struct {
		q     Qualification
		score int
		want  Priority
	}{
		{QualificationUrgent, 2, PriorityHigh},
		{QualificationInquiry, 8, PriorityHigh},
		{QualificationInterested, 3, PriorityMedium},
		{QualificationInquiry, 5, PriorityMedium},
		{QualificationInquiry, 2, PriorityLow},
		{QualificationFollowUp, 0, PriorityLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DerivePriority(tc.q, tc.score),
			"qualification=%s score=%d", tc.q, tc.score)
	}
}

func TestQualificationValid(t *testing.T) {
	for _, q := range []Qualification{QualificationUrgent, QualificationInterested, QualificationInquiry, QualificationFollowUp} {
		assert.True(t, q.Valid())
	}
	assert.False(t, Qualification("hot").Valid())
	assert.False(t, Qualification("").Valid())
}

func TestPriorityRankOrder(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Zero(t, Priority("critical").Rank())
}

func TestSortKeyValid(t *testing.T) {
	for _, k := range []SortKey{SortByScore, SortByWaitTime, SortByEstimatedValue, SortByPriority} {
		assert.True(t, k.Valid())
	}
	assert.False(t, SortKey("alphabetical").Valid())
}
