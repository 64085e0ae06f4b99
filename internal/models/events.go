package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types published to the snapshots topic.
const (
	EventSnapshotRecorded = "SNAPSHOT_RECORDED"
	EventReportSent       = "REPORT_SENT"
)

// SnapshotEvent is the Kafka event emitted after a run persists its
// snapshot and (separately) after the report is delivered.
type SnapshotEvent struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	RunID         string          `json:"run_id"`
	Date          string          `json:"date"`
	TotalValue    decimal.Decimal `json:"total_value"`
	PositionCount int             `json:"position_count"`
	FirstRun      bool            `json:"first_run"`
	Timestamp     time.Time       `json:"timestamp"`
}
