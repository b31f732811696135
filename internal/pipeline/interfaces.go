package pipeline

import (
	"context"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/google/uuid"
)

type AgentsProvider interface {
	ActiveAgents(ctx context.Context) ([]domain.Agent, error)
}

type TasksSaver interface {
	SaveTasks(ctx context.Context, tasks ...*domain.Task) error
}

type DistributionCreator interface {
	CreateDistribution(ctx context.Context, distribution *domain.Distribution) error
}

type DistributionUpdater interface {
	SetCompleted(ctx context.Context, id uuid.UUID, summary domain.DistributionSummary) error
	SetFailed(ctx context.Context, id uuid.UUID, message string) error
}

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
