package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/google/uuid"
)

// previewRowLimit bounds how many normalized rows the validate endpoint
// returns to the caller.
const previewRowLimit = 5

// PlanPreview is the caller-facing shape of a computed partition.
type PlanPreview struct {
	TotalItems     int              `json:"total_items"`
	TotalAgents    int              `json:"total_agents"`
	ItemsPerAgent  int              `json:"items_per_agent"`
	RemainderItems int              `json:"remainder_items"`
	AgentCounts    []AgentItemCount `json:"agent_counts"`
}

type AgentItemCount struct {
	AgentID uuid.UUID `json:"agent_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Items   int       `json:"items"`
}

type PreviewResult struct {
	Filename     string           `json:"filename"`
	TotalRows    int              `json:"total_rows"`
	Preview      []domain.Contact `json:"preview"`
	Columns      []string         `json:"columns"`
	Distribution *PlanPreview     `json:"distribution,omitempty"`
}

type CommitResult struct {
	DistributionID uuid.UUID                  `json:"distribution_id"`
	OriginalName   string                     `json:"original_name"`
	TotalItems     int                        `json:"total_items"`
	TasksCreated   int                        `json:"tasks_created"`
	Summary        domain.DistributionSummary `json:"distribution_summary"`
	AgentCounts    []AgentItemCount           `json:"agent_counts"`
}

// Service runs the upload pipeline end to end for the two entry points. One
// upload is fully ingested, parsed, validated, distributed and persisted
// before the handler returns; stages run strictly sequentially because each
// depends on the full output of the previous one.
type Service struct {
	log                 *slog.Logger
	gate                *Gate
	parser              *Parser
	agentsProvider      AgentsProvider
	distributionCreator DistributionCreator
	distributionUpdater DistributionUpdater
	orchestrator        *Orchestrator
}

func NewService(
	log *slog.Logger,
	agentsProvider AgentsProvider,
	distributionCreator DistributionCreator,
	distributionUpdater DistributionUpdater,
	orchestrator *Orchestrator,
) *Service {
	return &Service{
		log:                 log,
		gate:                NewGate(log),
		parser:              NewParser(log),
		agentsProvider:      agentsProvider,
		distributionCreator: distributionCreator,
		distributionUpdater: distributionUpdater,
		orchestrator:        orchestrator,
	}
}

// Preview validates an upload without persisting anything: no distribution
// and no task records are created, the partition is computed in memory only.
func (s *Service) Preview(ctx context.Context, upload *domain.RawUpload, targetCount int, withPlan bool) (*PreviewResult, error) {
	validated, err := s.gate.Validate(upload)
	if err != nil {
		return nil, err
	}

	rows, err := s.parser.Parse(validated)
	if err != nil {
		return nil, err
	}

	contacts, err := NewNormalizer(domain.MaxNotesLenPreview).NormalizeAll(rows)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{
		Filename:  validated.SanitizedName,
		TotalRows: len(contacts),
		Preview:   contacts[:min(len(contacts), previewRowLimit)],
		Columns:   RequiredColumns,
	}

	if withPlan {
		agents, err := s.agentsProvider.ActiveAgents(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get active agents: %w", err)
		}

		plan, err := Distribute(contacts, agents, targetCount)
		if err != nil {
			return nil, err
		}

		result.Distribution = planPreview(plan)
	}

	return result, nil
}

// Commit runs the full pipeline. The distribution record is created in
// processing status before the engine runs; any failure past that point
// transitions it to failed with the captured message, so an operator always
// knows unambiguously whether work was assigned.
func (s *Service) Commit(ctx context.Context, upload *domain.RawUpload, uploadedBy string, targetCount int) (*CommitResult, error) {
	validated, err := s.gate.Validate(upload)
	if err != nil {
		return nil, err
	}

	rows, err := s.parser.Parse(validated)
	if err != nil {
		return nil, err
	}

	contacts, err := NewNormalizer(domain.MaxNotesLenStored).NormalizeAll(rows)
	if err != nil {
		return nil, err
	}

	// The roster is read once per upload as a snapshot. Precondition and
	// parameter failures must leave no distribution record behind, so they
	// are checked before anything is persisted.
	agents, err := s.agentsProvider.ActiveAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active agents: %w", err)
	}

	if _, err := Distribute(contacts, agents, targetCount); err != nil {
		return nil, err
	}

	distribution := &domain.Distribution{
		ID:           uuid.New(),
		Filename:     validated.StoredName,
		OriginalName: validated.SanitizedName,
		TotalItems:   len(contacts),
		Status:       domain.StatusProcessing,
		UploadedBy:   uploadedBy,
		CreatedAt:    time.Now(),
	}

	if err := s.distributionCreator.CreateDistribution(ctx, distribution); err != nil {
		return nil, fmt.Errorf("failed to create distribution: %w", err)
	}

	plan, err := s.orchestrator.Distribute(ctx, distribution.ID, contacts, agents, targetCount)
	if err != nil {
		if failErr := s.distributionUpdater.SetFailed(ctx, distribution.ID, err.Error()); failErr != nil {
			s.log.ErrorContext(ctx, "failed to mark distribution as failed",
				slog.String("distribution_id", distribution.ID.String()),
				slog.String("err", failErr.Error()),
			)
		}

		return nil, err
	}

	preview := planPreview(plan)

	return &CommitResult{
		DistributionID: distribution.ID,
		OriginalName:   validated.SanitizedName,
		TotalItems:     len(contacts),
		TasksCreated:   len(contacts),
		Summary:        plan.Summary,
		AgentCounts:    preview.AgentCounts,
	}, nil
}

func planPreview(plan *domain.Plan) *PlanPreview {
	preview := &PlanPreview{
		TotalItems:     plan.TotalItems,
		TotalAgents:    plan.Summary.TotalAgents,
		ItemsPerAgent:  plan.Summary.ItemsPerAgent,
		RemainderItems: plan.Summary.RemainderItems,
		AgentCounts:    make([]AgentItemCount, 0, len(plan.Assignments)),
	}

	for _, assignment := range plan.Assignments {
		preview.AgentCounts = append(preview.AgentCounts, AgentItemCount{
			AgentID: assignment.Agent.ID,
			Name:    assignment.Agent.Name,
			Email:   assignment.Agent.Email,
			Items:   len(assignment.Items),
		})
	}

	return preview
}
