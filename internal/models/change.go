package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoverEntry is one position ranked by price percentage change for
// gainer/loser reporting. New and sold positions carry sentinel
// percentages (+100 / -100) so they rank ahead of ordinary moves.
type MoverEntry struct {
	Ticker         string          `json:"ticker"`
	PriceChange    decimal.Decimal `json:"price_change"`
	PriceChangePct decimal.Decimal `json:"price_change_pct"`
	ValueChange    decimal.Decimal `json:"value_change"`
	IsNew          bool            `json:"is_new"`
	IsSold         bool            `json:"is_sold"`
}

// DailyChange records the deltas between two consecutive snapshots.
// No DailyChange exists for the very first snapshot; that state is
// represented by the absence of a record, not a zero-valued one.
type DailyChange struct {
	ID             int64           `json:"id"`
	Date           time.Time       `json:"date"`
	PrevDate       time.Time       `json:"prev_date"`
	DaysBetween    int             `json:"days_between"`
	ValueChange    decimal.Decimal `json:"value_change"`
	ValueChangePct decimal.Decimal `json:"value_change_pct"`
	PLChange       decimal.Decimal `json:"pl_change"`
	DivChange      decimal.Decimal `json:"div_change"`
	ReturnChange   decimal.Decimal `json:"return_change"`
	TopGainers     []MoverEntry    `json:"top_gainers"`
	TopLosers      []MoverEntry    `json:"top_losers"`
	Notes          []string        `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
