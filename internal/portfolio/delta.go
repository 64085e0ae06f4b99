package portfolio

import (
	"fmt"
	"sort"

	"github.com/tcollier/portfolio-report/internal/models"
)

const maxMovers = 3

// ComputeDelta compares the new snapshot against the most recent prior
// one. A nil previous snapshot means this is the first run ever; there is
// nothing to compare, and no DailyChange exists for that state.
//
// Gaps between snapshot dates are tolerated, never interpolated: the delta
// uses the same formulas regardless of how many days passed, and anomalies
// (gap, duplicate day, out-of-order dates) are surfaced as notes.
func ComputeDelta(current, previous *models.Snapshot) *models.DailyChange {
	if previous == nil {
		return nil
	}

	daysBetween := int(current.Date.Sub(previous.Date).Hours() / 24)

	change := &models.DailyChange{
		Date:         current.Date,
		PrevDate:     previous.Date,
		DaysBetween:  daysBetween,
		ValueChange:  current.Summary.TotalValue.Sub(previous.Summary.TotalValue),
		PLChange:     current.Summary.UnrealizedPL.Sub(previous.Summary.UnrealizedPL),
		DivChange:    current.Summary.DividendIncome.Sub(previous.Summary.DividendIncome),
		ReturnChange: current.Summary.TotalReturn.Sub(previous.Summary.TotalReturn),
	}
	change.ValueChangePct = pct(change.ValueChange, previous.Summary.TotalValue)

	switch {
	case daysBetween > 1:
		change.Notes = append(change.Notes, fmt.Sprintf("Days between: %d", daysBetween))
	case daysBetween == 0:
		change.Notes = append(change.Notes, "Duplicate same-day snapshot")
	case daysBetween < 0:
		change.Notes = append(change.Notes, "Out-of-order snapshot dates")
	}

	prevByTicker := make(map[string]models.PositionMetrics, len(previous.Positions))
	for _, p := range previous.Positions {
		prevByTicker[p.Ticker] = p
	}

	currentTickers := make(map[string]bool, len(current.Positions))
	movers := make([]models.MoverEntry, 0, len(current.Positions)+len(previous.Positions))

	for _, cur := range current.Positions {
		currentTickers[cur.Ticker] = true

		prev, held := prevByTicker[cur.Ticker]
		if !held {
			// A new position counts its full value as the day's gain.
			movers = append(movers, models.MoverEntry{
				Ticker:         cur.Ticker,
				PriceChangePct: hundred,
				ValueChange:    cur.MarketValue,
				IsNew:          true,
			})
			continue
		}

		priceChange := cur.CurrentPrice.Sub(prev.CurrentPrice)
		movers = append(movers, models.MoverEntry{
			Ticker:         cur.Ticker,
			PriceChange:    priceChange,
			PriceChangePct: pct(priceChange, prev.CurrentPrice),
			ValueChange:    cur.MarketValue.Sub(prev.MarketValue),
		})
	}

	for _, prev := range previous.Positions {
		if currentTickers[prev.Ticker] {
			continue
		}
		movers = append(movers, models.MoverEntry{
			Ticker:         prev.Ticker,
			PriceChangePct: hundred.Neg(),
			ValueChange:    prev.MarketValue.Neg(),
			IsSold:         true,
		})
	}

	change.TopGainers = topMovers(movers, true)
	change.TopLosers = topMovers(movers, false)

	return change
}

// topMovers selects up to maxMovers entries with a strictly positive
// (gainers) or strictly negative (losers) percentage change. Unchanged
// positions qualify for neither list, and short lists are not padded.
// Ties sort by ticker so the ranking is deterministic.
func topMovers(movers []models.MoverEntry, gainers bool) []models.MoverEntry {
	var qualified []models.MoverEntry
	for _, m := range movers {
		if gainers && m.PriceChangePct.IsPositive() {
			qualified = append(qualified, m)
		}
		if !gainers && m.PriceChangePct.IsNegative() {
			qualified = append(qualified, m)
		}
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		cmp := qualified[i].PriceChangePct.Cmp(qualified[j].PriceChangePct)
		if cmp == 0 {
			return qualified[i].Ticker < qualified[j].Ticker
		}
		if gainers {
			return cmp > 0
		}
		return cmp < 0
	})

	if len(qualified) > maxMovers {
		qualified = qualified[:maxMovers]
	}
	return qualified
}
