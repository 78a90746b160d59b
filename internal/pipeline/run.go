package pipeline

import "time"

// RunStatus tracks a refresh run through its lifecycle.
type RunStatus string

const (
	StatusAccepted   RunStatus = "ACCEPTED"
	StatusProcessing RunStatus = "PROCESSING"
	StatusSuccess    RunStatus = "SUCCESS"
	StatusFailure    RunStatus = "FAILURE"
)

// RunRecord is the persisted state of a single refresh run.
type RunRecord struct {
	RunID         string     `json:"run_id"`
	Status        RunStatus  `json:"status"`
	MaxProducts   int        `json:"max_products"`
	CategoryURL   string     `json:"category_url,omitempty"`
	NewProducts   int        `json:"new_products"`
	TotalProducts int        `json:"total_products"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Terminal reports whether the run has finished.
func (r *RunRecord) Terminal() bool {
	return r.Status == StatusSuccess || r.Status == StatusFailure
}
