// Package report_generator renders a committed distribution as a
// downloadable artifact for the operator: a flat CSV of every assignment or
// a PDF grouped per agent.
package report_generator

import (
	"fmt"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
)

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

type assignmentRow struct {
	AgentName  string `csv:"agent_name"`
	AgentEmail string `csv:"agent_email"`
	FirstName  string `csv:"first_name"`
	Phone      string `csv:"phone"`
	Notes      string `csv:"notes"`
	Status     string `csv:"status"`
	AssignedAt string `csv:"assigned_at"`
}

// CSV renders one row per task, in assignment order.
func (g *Generator) CSV(d *domain.Distribution, agents []domain.Agent, tasks []*domain.Task) ([]byte, error) {
	byID := agentsByID(agents)

	rows := make([]assignmentRow, 0, len(tasks))
	for _, task := range tasks {
		agent := byID[task.AgentID]

		rows = append(rows, assignmentRow{
			AgentName:  agent.Name,
			AgentEmail: agent.Email,
			FirstName:  task.FirstName,
			Phone:      task.Phone,
			Notes:      task.Notes,
			Status:     string(task.Status),
			AssignedAt: task.AssignedAt.Format("2006-01-02 15:04:05"),
		})
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report rows: %w", err)
	}

	return data, nil
}

func agentsByID(agents []domain.Agent) map[uuid.UUID]domain.Agent {
	byID := make(map[uuid.UUID]domain.Agent, len(agents))
	for _, agent := range agents {
		byID[agent.ID] = agent
	}

	return byID
}
