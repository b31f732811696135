package report_generator

import (
	"fmt"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/google/uuid"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PDF renders a summary page followed by one section per agent listing the
// tasks that agent received.
func (g *Generator) PDF(d *domain.Distribution, agents []domain.Agent, tasks []*domain.Task) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRows(
		text.NewRow(12, fmt.Sprintf("Distribution report — %s", d.OriginalName), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
		}),
		text.NewRow(6, fmt.Sprintf("Uploaded by %s at %s", d.UploadedBy, d.CreatedAt.Format("2006-01-02 15:04:05")), props.Text{
			Size: 9,
		}),
	)

	if d.Summary != nil {
		m.AddRows(text.NewRow(6, fmt.Sprintf(
			"%d items across %d agents (%d base, %d with one extra)",
			d.TotalItems, d.Summary.TotalAgents, d.Summary.ItemsPerAgent, d.Summary.RemainderItems,
		), props.Text{Size: 9}))
	}

	byAgent := tasksByAgent(tasks)
	byID := agentsByID(agents)

	for _, agent := range agents {
		agentTasks := byAgent[agent.ID]
		if len(agentTasks) == 0 {
			continue
		}

		m.AddRows(text.NewRow(10, fmt.Sprintf("%s <%s> — %d tasks", agent.Name, agent.Email, len(agentTasks)), props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Top:   4,
		}))

		m.AddRow(6,
			text.NewCol(4, "First name", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(3, "Phone", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(5, "Notes", props.Text{Size: 9, Style: fontstyle.Bold}),
		)

		for _, task := range agentTasks {
			m.AddRow(5,
				text.NewCol(4, task.FirstName, props.Text{Size: 8}),
				text.NewCol(3, task.Phone, props.Text{Size: 8}),
				text.NewCol(5, task.Notes, props.Text{Size: 8}),
			)
		}
	}

	// Tasks may reference agents that were deactivated after the
	// distribution ran; they still belong in the report.
	for agentID, agentTasks := range byAgent {
		if _, ok := byID[agentID]; ok {
			continue
		}

		m.AddRows(text.NewRow(10, fmt.Sprintf("Inactive agent %s — %d tasks", agentID, len(agentTasks)), props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Top:   4,
		}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	return doc.GetBytes(), nil
}

func tasksByAgent(tasks []*domain.Task) map[uuid.UUID][]*domain.Task {
	byAgent := make(map[uuid.UUID][]*domain.Task)
	for _, task := range tasks {
		byAgent[task.AgentID] = append(byAgent[task.AgentID], task)
	}

	return byAgent
}
