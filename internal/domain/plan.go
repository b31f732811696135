package domain

// AgentAssignment is the contiguous slice of items one agent received.
type AgentAssignment struct {
	Agent Agent     `json:"agent"`
	Items []Contact `json:"items"`
}

// Plan is the pure output of the distribution engine: a deterministic
// partition of every item across the participating agents. Computing a plan
// has no side effects, so it doubles as the preview payload.
type Plan struct {
	TotalItems  int                 `json:"total_items"`
	Summary     DistributionSummary `json:"summary"`
	Assignments []AgentAssignment   `json:"assignments"`
}
