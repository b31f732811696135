package pipeline

import (
	"github.com/fieldops/task_distributor/internal/domain"
)

const (
	// MaxTargetAgents caps the caller-supplied participant count.
	MaxTargetAgents = 10

	// DefaultTargetAgents participate when the caller does not ask for a
	// specific count; the roster may be smaller.
	DefaultTargetAgents = 5
)

// Distribute partitions items across the agent snapshot: every participant
// receives floor(N/A) items and the first N mod A agents in roster order
// receive one extra, sliced contiguously in original item order. The function
// is pure and deterministic, so the same items and roster always produce the
// same plan and a plan can serve as a preview without writing anything.
//
// targetCount limits participation to the first targetCount agents of the
// roster; zero means "not supplied" and defaults to min(len(agents), 5).
// The roster ordering (active agents, oldest created first) is the caller's
// responsibility and is never re-sorted here.
func Distribute(items []domain.Contact, agents []domain.Agent, targetCount int) (*domain.Plan, error) {
	if err := validateTargetCount(targetCount); err != nil {
		return nil, err
	}

	if len(agents) == 0 {
		return nil, domain.NewError(domain.CodeNoActiveAgents, "no active agents available for distribution")
	}

	if targetCount == 0 {
		targetCount = min(len(agents), DefaultTargetAgents)
	}

	participants := agents[:min(targetCount, len(agents))]

	n, a := len(items), len(participants)
	base, remainder := n/a, n%a

	plan := &domain.Plan{
		TotalItems: n,
		Summary: domain.DistributionSummary{
			TotalAgents:    a,
			ItemsPerAgent:  base,
			RemainderItems: remainder,
		},
		Assignments: make([]domain.AgentAssignment, 0, a),
	}

	offset := 0
	for i, agent := range participants {
		count := base
		if i < remainder {
			count++
		}

		plan.Assignments = append(plan.Assignments, domain.AgentAssignment{
			Agent: agent,
			Items: items[offset : offset+count],
		})
		offset += count
	}

	return plan, nil
}

func validateTargetCount(targetCount int) error {
	if targetCount < 0 || targetCount > MaxTargetAgents {
		return domain.NewErrorf(domain.CodeInvalidTargetAgentCount,
			"target agent count must be between 1 and %d", MaxTargetAgents)
	}

	return nil
}
