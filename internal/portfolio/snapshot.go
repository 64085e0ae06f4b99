package portfolio

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tcollier/portfolio-report/internal/marketdata"
	"github.com/tcollier/portfolio-report/internal/models"
)

// ErrNoPositions indicates every position was excluded (or the source was
// empty), so no meaningful snapshot exists. The run must fail rather than
// persist an all-zero record.
var ErrNoPositions = errors.New("no positions with valid metrics")

// BuildSnapshot aggregates per-position metrics into one immutable
// snapshot. Summary percentages are ratios of the summed fields, never
// averages of per-position percentages. Position order follows the input.
func BuildSnapshot(runID uuid.UUID, timestamp time.Time, metrics []models.PositionMetrics) (*models.Snapshot, error) {
	if len(metrics) == 0 {
		return nil, ErrNoPositions
	}

	var summary models.PortfolioSummary
	for _, m := range metrics {
		summary.TotalValue = summary.TotalValue.Add(m.MarketValue)
		summary.TotalCost = summary.TotalCost.Add(m.CostBasis)
		summary.UnrealizedPL = summary.UnrealizedPL.Add(m.UnrealizedPL)
		summary.DividendIncome = summary.DividendIncome.Add(m.DividendIncome)
		summary.TotalReturn = summary.TotalReturn.Add(m.TotalReturn)
	}
	summary.UnrealizedPLPct = pct(summary.UnrealizedPL, summary.TotalCost)
	summary.TotalReturnPct = pct(summary.TotalReturn, summary.TotalCost)
	summary.PositionCount = len(metrics)

	positions := make([]models.PositionMetrics, len(metrics))
	copy(positions, metrics)

	return &models.Snapshot{
		RunID:     runID,
		Timestamp: timestamp,
		Date:      marketdata.DayOf(timestamp),
		Summary:   summary,
		Positions: positions,
	}, nil
}
