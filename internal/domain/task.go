package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is one contact record assigned to one agent as trackable work.
// Tasks are created in bulk by the orchestrator after the full partition is
// computed, never one at a time.
type Task struct {
	ID             uuid.UUID  `db:"id"              json:"id"`
	DistributionID uuid.UUID  `db:"distribution_id" json:"distribution_id"`
	AgentID        uuid.UUID  `db:"agent_id"        json:"agent_id"`
	FirstName      string     `db:"first_name"      json:"first_name"`
	Phone          string     `db:"phone"           json:"phone"`
	Notes          string     `db:"notes"           json:"notes"`
	Status         TaskStatus `db:"status"          json:"status"`
	AssignedAt     time.Time  `db:"assigned_at"     json:"assigned_at"`
	CompletedAt    *time.Time `db:"completed_at"    json:"completed_at,omitempty"`
}
