package models

import "time"

// RefreshResponse is returned when a refresh run has been accepted
type RefreshResponse struct {
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"`
	MaxProducts int       `json:"max_products"`
	CorpusSize  int       `json:"corpus_size"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

// ProductsResponse wraps the accumulated corpus for API consumers
type ProductsResponse struct {
	Products   []EnrichedProduct `json:"products"`
	TotalCount int               `json:"total_count"`
	Category   string            `json:"category"`
	ScrapedAt  *time.Time        `json:"scraped_at,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Version       string            `json:"version"`
	Uptime        time.Duration     `json:"uptime"`
	Checks        map[string]string `json:"checks,omitempty"`
	StrategyUsage map[string]int    `json:"strategy_usage,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
