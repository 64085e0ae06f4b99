package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents one open lot from the holdings source.
// One lot per ticker; the loader rejects duplicates.
type Position struct {
	Ticker       string          `json:"ticker"`
	Quantity     decimal.Decimal `json:"quantity"`
	PurchaseDate time.Time       `json:"purchase_date"`
}

// PositionMetrics holds the computed performance figures for a single
// position. All percentage fields are value*100 (27.34 means 27.34%).
type PositionMetrics struct {
	Ticker          string          `json:"ticker"`
	Quantity        decimal.Decimal `json:"quantity"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	CostBasis       decimal.Decimal `json:"cost_basis"`
	MarketValue     decimal.Decimal `json:"market_value"`
	UnrealizedPL    decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPct decimal.Decimal `json:"unrealized_pl_pct"`
	DividendIncome  decimal.Decimal `json:"dividend_income"`
	TotalReturn     decimal.Decimal `json:"total_return"`
	TotalReturnPct  decimal.Decimal `json:"total_return_pct"`
	YieldOnCost     decimal.Decimal `json:"yield_on_cost"`
	// CAGR is nil when the holding period is too short to annualize.
	CAGR *decimal.Decimal `json:"cagr"`
	Beta decimal.Decimal  `json:"beta"`
}
