package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/fieldops/task_distributor/internal/pipeline"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_Distribute_HappyPath(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)
	tasksSaver := &fakeTasksSaver{}
	store := newFakeDistributionStore()

	orchestrator := pipeline.NewOrchestrator(log, tasksSaver, store, fakeTransactor{})

	distributionID := uuid.New()
	agents := makeAgents(5)

	plan, err := orchestrator.Distribute(context.Background(), distributionID, makeContacts(12), agents, 5)
	require.NoError(t, err)

	require.Len(t, tasksSaver.saved, 12)

	// First two agents carry the remainder: 3+3+2+2+2 in roster order.
	perAgent := make(map[uuid.UUID]int)
	for _, task := range tasksSaver.saved {
		assert.Equal(t, distributionID, task.DistributionID)
		assert.Equal(t, domain.TaskStatusAssigned, task.Status)
		assert.NotEqual(t, uuid.Nil, task.ID)
		perAgent[task.AgentID]++
	}
	assert.Equal(t, 3, perAgent[agents[0].ID])
	assert.Equal(t, 3, perAgent[agents[1].ID])
	assert.Equal(t, 2, perAgent[agents[4].ID])

	require.Contains(t, store.completed, distributionID)
	assert.Equal(t, plan.Summary, store.completed[distributionID])
}

func TestOrchestrator_Distribute_TaskOrderFollowsFileOrder(t *testing.T) {
	t.Parallel()

	tasksSaver := &fakeTasksSaver{}
	orchestrator := pipeline.NewOrchestrator(slog.New(slog.DiscardHandler), tasksSaver, newFakeDistributionStore(), fakeTransactor{})

	items := makeContacts(7)

	_, err := orchestrator.Distribute(context.Background(), uuid.New(), items, makeAgents(3), 3)
	require.NoError(t, err)

	require.Len(t, tasksSaver.saved, 7)
	for i, task := range tasksSaver.saved {
		assert.Equal(t, items[i].FirstName, task.FirstName)
	}
}

func TestOrchestrator_Distribute_SaveFailure(t *testing.T) {
	t.Parallel()

	saveErr := errors.New("copy failed")
	tasksSaver := &fakeTasksSaver{saveErr: saveErr}
	store := newFakeDistributionStore()

	orchestrator := pipeline.NewOrchestrator(slog.New(slog.DiscardHandler), tasksSaver, store, fakeTransactor{})

	_, err := orchestrator.Distribute(context.Background(), uuid.New(), makeContacts(5), makeAgents(2), 2)
	require.ErrorIs(t, err, saveErr)

	// Nothing was completed; the caller decides the failed transition.
	assert.Empty(t, store.completed)
	assert.Empty(t, store.failed)
}

func TestOrchestrator_Distribute_EngineFailureSkipsPersistence(t *testing.T) {
	t.Parallel()

	tasksSaver := &fakeTasksSaver{}
	store := newFakeDistributionStore()

	orchestrator := pipeline.NewOrchestrator(slog.New(slog.DiscardHandler), tasksSaver, store, fakeTransactor{})

	_, err := orchestrator.Distribute(context.Background(), uuid.New(), makeContacts(5), nil, 0)
	assert.Equal(t, domain.CodeNoActiveAgents, pipelineError(t, err).Code)

	assert.Empty(t, tasksSaver.saved)
	assert.Empty(t, store.completed)
}
