package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// DistributionSummary is written on successful completion only.
type DistributionSummary struct {
	TotalAgents    int `json:"total_agents"`
	ItemsPerAgent  int `json:"items_per_agent"`
	RemainderItems int `json:"remainder_items"`
}

// Distribution is the persisted aggregate of one upload event. It is created
// in processing status before parsing begins and always ends up either
// completed or failed; it is never deleted by the pipeline.
type Distribution struct {
	ID           uuid.UUID            `json:"id"`
	Filename     string               `json:"filename"`
	OriginalName string               `json:"original_name"`
	TotalItems   int                  `json:"total_items"`
	Status       Status               `json:"status"`
	ErrorMessage string               `json:"error_message,omitempty"`
	UploadedBy   string               `json:"uploaded_by"`
	CreatedAt    time.Time            `json:"created_at"`
	Summary      *DistributionSummary `json:"distribution_summary,omitempty"`
}
