package pipeline_test

import (
	"context"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/google/uuid"
)

type fakeAgentsProvider struct {
	agents []domain.Agent
	err    error
}

func (f *fakeAgentsProvider) ActiveAgents(context.Context) ([]domain.Agent, error) {
	return f.agents, f.err
}

type fakeTasksSaver struct {
	saved   []*domain.Task
	saveErr error
}

func (f *fakeTasksSaver) SaveTasks(_ context.Context, tasks ...*domain.Task) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.saved = append(f.saved, tasks...)
	return nil
}

// fakeDistributionStore implements both DistributionCreator and
// DistributionUpdater, mirroring the real repository.
type fakeDistributionStore struct {
	created   []*domain.Distribution
	completed map[uuid.UUID]domain.DistributionSummary
	failed    map[uuid.UUID]string

	createErr   error
	completeErr error
}

func newFakeDistributionStore() *fakeDistributionStore {
	return &fakeDistributionStore{
		completed: make(map[uuid.UUID]domain.DistributionSummary),
		failed:    make(map[uuid.UUID]string),
	}
}

func (f *fakeDistributionStore) CreateDistribution(_ context.Context, d *domain.Distribution) error {
	if f.createErr != nil {
		return f.createErr
	}

	f.created = append(f.created, d)
	return nil
}

func (f *fakeDistributionStore) SetCompleted(_ context.Context, id uuid.UUID, summary domain.DistributionSummary) error {
	if f.completeErr != nil {
		return f.completeErr
	}

	f.completed[id] = summary
	return nil
}

func (f *fakeDistributionStore) SetFailed(_ context.Context, id uuid.UUID, message string) error {
	f.failed[id] = message
	return nil
}

// fakeTransactor runs the function directly; rollback semantics are the
// database's concern, the tests only care about the reported error.
type fakeTransactor struct{}

func (fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
