package models

import "time"

// Run outcomes reported by the status API.
const (
	RunSucceeded      = "succeeded"
	RunFailed         = "failed"
	RunDeliveryFailed = "delivery_failed"
)

// RunStatus captures the result of the most recent report run
type RunStatus struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Outcome         string    `json:"outcome"`
	Error           string    `json:"error,omitempty"`
	SnapshotDate    string    `json:"snapshot_date,omitempty"`
	FirstRun        bool      `json:"first_run"`
	PositionCount   int       `json:"position_count"`
	ExcludedTickers []string  `json:"excluded_tickers,omitempty"`
}
