package attendance

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingIntake struct {
	inserted chan lead.Lead
	claimed  chan string
}

func newCapturingIntake() *capturingIntake {
	return &capturingIntake{
		inserted: make(chan lead.Lead, 8),
		claimed:  make(chan string, 8),
	}
}

func (i *capturingIntake) Insert(ctx context.Context, l *lead.Lead) error {
	i.inserted <- *l
	return nil
}

func (i *capturingIntake) MarkClaimed(ctx context.Context, leadID, agentID string) error {
	i.claimed <- leadID + ":" + agentID
	return nil
}

func newCoordinator(st *store.Store, intake Intake) *Coordinator {
	metrics := NewMetricsService(st, 7*24*time.Hour)
	return NewCoordinator(st, metrics, intake, nil, zap.NewNop())
}

func TestCoordinatorClaim(t *testing.T) {
	st := store.New()
	seedLead(t, st, "L1", lead.QualificationUrgent, 9, 5000)

	conv, err := newCoordinator(st, nil).Claim(context.Background(), "L1", "agent-1")
	require.NoError(t, err)
	assert.Equal(t, "agent-1", conv.AssignedAgentID)
}

func TestCoordinatorClaimErrors(t *testing.T) {
	st := store.New()
	seedLead(t, st, "L1", lead.QualificationUrgent, 9, 5000)
	coord := newCoordinator(st, nil)

	_, err := coord.Claim(context.Background(), "missing", "agent-1")
	assert.ErrorIs(t, err, lead.ErrNotFound)

	_, err = coord.Claim(context.Background(), "L1", "agent-1")
	require.NoError(t, err)
	_, err = coord.Claim(context.Background(), "L1", "agent-2")
	assert.ErrorIs(t, err, lead.ErrAlreadyClaimed)
}

func TestCoordinatorConcurrentClaims(t *testing.T) {
	st := store.New()
	seedLead(t, st, "L1", lead.QualificationUrgent, 9, 5000)
	coord := newCoordinator(st, nil)

	const agents = 16
	var wg sync.WaitGroup
	errs := make([]error, agents)

	for i := 0; i < agents; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = coord.Claim(context.Background(), "L1", fmt.Sprintf("agent-%d", i))
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, lead.ErrAlreadyClaimed)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestCoordinatorTombstonesClaimedLead(t *testing.T) {
	st := store.New()
	seedLead(t, st, "L1", lead.QualificationUrgent, 9, 5000)
	intake := newCapturingIntake()

	_, err := newCoordinator(st, intake).Claim(context.Background(), "L1", "agent-1")
	require.NoError(t, err)

	select {
	case got := <-intake.claimed:
		assert.Equal(t, "L1:agent-1", got)
	case <-time.After(2 * time.Second):
		t.Fatal("claim was not handed to intake persistence")
	}
}

func TestQueueServicePersistsCreatedLead(t *testing.T) {
	intake := newCapturingIntake()
	svc := NewQueueService(store.New(), intake, nil, zap.NewNop())

	created, err := svc.CreateLead(context.Background(), &lead.CreateLeadRequest{
		ContactChannel: "whatsapp",
		Qualification:  "urgent",
		Score:          8,
	})
	require.NoError(t, err)

	select {
	case got := <-intake.inserted:
		assert.Equal(t, created.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("lead was not handed to intake persistence")
	}
}
