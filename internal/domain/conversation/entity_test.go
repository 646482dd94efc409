package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusNew, StatusActive, true},
		{StatusNew, StatusPaused, false},
		{StatusNew, StatusFinished, false},
		{StatusActive, StatusPaused, true},
		{StatusActive, StatusFinished, true},
		{StatusActive, StatusActive, false},
		{StatusPaused, StatusActive, true},
		{StatusPaused, StatusFinished, true},
		{StatusPaused, StatusPaused, false},
		{StatusFinished, StatusActive, false},
		{StatusFinished, StatusPaused, false},
		{StatusFinished, StatusFinished, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatusAttendable(t *testing.T) {
	assert.True(t, StatusActive.Attendable())
	assert.True(t, StatusPaused.Attendable())
	assert.False(t, StatusNew.Attendable())
	assert.False(t, StatusFinished.Attendable())
}

func TestAuthorKindValid(t *testing.T) {
	for _, a := range []AuthorKind{AuthorCustomer, AuthorAgent, AuthorAssistant, AuthorSystem} {
		assert.True(t, a.Valid())
	}
	assert.False(t, AuthorKind("bot").Valid())
}

func TestDeliveryRankAdvances(t *testing.T) {
	assert.Less(t, DeliverySent.Rank(), DeliveryDelivered.Rank())
	assert.Less(t, DeliveryDelivered.Rank(), DeliveryRead.Rank())
	assert.Zero(t, DeliveryStatus("bounced").Rank())
}
