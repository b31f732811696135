package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/google/uuid"
)

// Orchestrator materializes a computed plan as persisted tasks. The agent
// snapshot arrives as an explicit parameter, fetched once by the caller, so
// the engine stays a pure function with no hidden roster reads.
type Orchestrator struct {
	log                 *slog.Logger
	tasksSaver          TasksSaver
	distributionUpdater DistributionUpdater
	transactor          Transactor
}

func NewOrchestrator(
	log *slog.Logger,
	tasksSaver TasksSaver,
	distributionUpdater DistributionUpdater,
	transactor Transactor,
) *Orchestrator {
	return &Orchestrator{
		log:                 log,
		tasksSaver:          tasksSaver,
		distributionUpdater: distributionUpdater,
		transactor:          transactor,
	}
}

// Distribute runs the engine for a distribution already persisted in
// processing status, bulk-inserts every task and flips the distribution to
// completed inside one transaction. It returns an explicit result: either the
// full plan or an error, in which case no task exists and the caller is
// responsible for marking the distribution failed.
func (o *Orchestrator) Distribute(
	ctx context.Context,
	distributionID uuid.UUID,
	items []domain.Contact,
	agents []domain.Agent,
	targetCount int,
) (*domain.Plan, error) {
	plan, err := Distribute(items, agents, targetCount)
	if err != nil {
		return nil, err
	}

	tasks := buildTasks(distributionID, plan)

	err = o.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := o.tasksSaver.SaveTasks(ctx, tasks...); err != nil {
			return fmt.Errorf("failed to save tasks: %w", err)
		}

		if err := o.distributionUpdater.SetCompleted(ctx, distributionID, plan.Summary); err != nil {
			return fmt.Errorf("failed to complete distribution: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	o.log.InfoContext(ctx, "distribution committed",
		slog.String("distribution_id", distributionID.String()),
		slog.Int("task_count", len(tasks)),
		slog.Int("agent_count", plan.Summary.TotalAgents),
	)

	return plan, nil
}

func buildTasks(distributionID uuid.UUID, plan *domain.Plan) []*domain.Task {
	now := time.Now()

	tasks := make([]*domain.Task, 0, plan.TotalItems)
	for _, assignment := range plan.Assignments {
		for _, item := range assignment.Items {
			tasks = append(tasks, &domain.Task{
				ID:             uuid.New(),
				DistributionID: distributionID,
				AgentID:        assignment.Agent.ID,
				FirstName:      item.FirstName,
				Phone:          item.Phone,
				Notes:          item.Notes,
				Status:         domain.TaskStatusAssigned,
				AssignedAt:     now,
			})
		}
	}

	return tasks
}
