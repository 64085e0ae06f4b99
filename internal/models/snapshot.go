package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionsDocumentVersion is the current schema version of the positions
// JSON document persisted alongside each snapshot.
const PositionsDocumentVersion = 1

// PortfolioSummary aggregates all position metrics for one snapshot.
// Percentage fields are ratios of the summed fields, not averages of
// per-position percentages.
type PortfolioSummary struct {
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	UnrealizedPL    decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPct decimal.Decimal `json:"unrealized_pl_pct"`
	DividendIncome  decimal.Decimal `json:"dividend_income"`
	TotalReturn     decimal.Decimal `json:"total_return"`
	TotalReturnPct  decimal.Decimal `json:"total_return_pct"`
	PositionCount   int             `json:"position_count"`
}

// Snapshot is the immutable record of complete portfolio state at a point
// in time. Snapshots are append-only; they are never updated or deleted.
type Snapshot struct {
	ID        int64             `json:"id"`
	RunID     uuid.UUID         `json:"run_id"`
	Timestamp time.Time         `json:"timestamp"`
	Date      time.Time         `json:"date"`
	Summary   PortfolioSummary  `json:"summary"`
	Positions []PositionMetrics `json:"positions"`
	CreatedAt time.Time         `json:"created_at"`
}

// PositionsDocument is the versioned wrapper for the positions list as it
// is stored in the snapshots table. Readers must check Version before
// interpreting Positions.
type PositionsDocument struct {
	Version   int               `json:"version"`
	Positions []PositionMetrics `json:"positions"`
}

// TrendPoint is one snapshot summary reduced to the fields the trend chart
// plots.
type TrendPoint struct {
	Date       time.Time       `json:"date"`
	TotalValue decimal.Decimal `json:"total_value"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// PositionHistoryRow is the flattened per-position record appended for each
// position on each run, used for longitudinal queries.
type PositionHistoryRow struct {
	ID              int64           `json:"id"`
	SnapshotDate    time.Time       `json:"snapshot_date"`
	Ticker          string          `json:"ticker"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	MarketValue     decimal.Decimal `json:"market_value"`
	UnrealizedPL    decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPct decimal.Decimal `json:"unrealized_pl_pct"`
	DividendIncome  decimal.Decimal `json:"dividend_income"`
	CreatedAt       time.Time       `json:"created_at"`
}
