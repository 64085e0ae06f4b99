package portfolio

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcollier/portfolio-report/internal/models"
)

func snapshotOn(t *testing.T, date time.Time, metrics ...models.PositionMetrics) *models.Snapshot {
	t.Helper()
	snap, err := BuildSnapshot(uuid.New(), date, metrics)
	require.NoError(t, err)
	return snap
}

func moverTickers(movers []models.MoverEntry) []string {
	out := make([]string, len(movers))
	for i, m := range movers {
		out[i] = m.Ticker
	}
	return out
}

func TestComputeDeltaFirstRun(t *testing.T) {
	current := snapshotOn(t, day(2024, 1, 15), metricsFor("AAPL", 10, 100, 110))
	assert.Nil(t, ComputeDelta(current, nil))
}

func TestComputeDeltaSingleGainer(t *testing.T) {
	// 100 shares of AAA bought at 10: day 1 at 10, day 2 at 11.
	prev := snapshotOn(t, day(2024, 1, 15), metricsFor("AAA", 100, 10, 10))
	current := snapshotOn(t, day(2024, 1, 16), metricsFor("AAA", 100, 10, 11))

	change := ComputeDelta(current, prev)
	require.NotNil(t, change)

	assert.Equal(t, 1, change.DaysBetween)
	assert.Empty(t, change.Notes)
	assert.True(t, decimal.NewFromInt(100).Equal(change.ValueChange), "got %s", change.ValueChange)
	assert.True(t, decimal.NewFromInt(10).Equal(change.ValueChangePct), "got %s", change.ValueChangePct)

	require.Len(t, change.TopGainers, 1)
	gainer := change.TopGainers[0]
	assert.Equal(t, "AAA", gainer.Ticker)
	assert.True(t, decimal.NewFromInt(1).Equal(gainer.PriceChange))
	assert.True(t, decimal.NewFromInt(10).Equal(gainer.PriceChangePct))
	assert.True(t, decimal.NewFromInt(100).Equal(gainer.ValueChange))
	assert.False(t, gainer.IsNew)
	assert.False(t, gainer.IsSold)

	assert.Empty(t, change.TopLosers)
}

func TestComputeDeltaUnchangedPrice(t *testing.T) {
	prev := snapshotOn(t, day(2024, 1, 15), metricsFor("AAA", 100, 10, 10))
	current := snapshotOn(t, day(2024, 1, 16), metricsFor("AAA", 100, 10, 10))

	change := ComputeDelta(current, prev)
	require.NotNil(t, change)

	assert.Empty(t, change.TopGainers, "flat position is not a gainer")
	assert.Empty(t, change.TopLosers, "flat position is not a loser")
	assert.True(t, change.ValueChange.IsZero())
}

func TestComputeDeltaNewPosition(t *testing.T) {
	prev := snapshotOn(t, day(2024, 1, 15), metricsFor("AAA", 100, 10, 10))
	current := snapshotOn(t, day(2024, 1, 16),
		metricsFor("AAA", 100, 10, 10.5), // +5%
		metricsFor("NEW", 10, 50, 50),    // added today, value 500
	)

	change := ComputeDelta(current, prev)
	require.NotNil(t, change)

	require.Len(t, change.TopGainers, 2)
	first := change.TopGainers[0]
	assert.Equal(t, "NEW", first.Ticker, "the +100 sentinel ranks above a real +5 percent move")
	assert.True(t, first.IsNew)
	assert.False(t, first.IsSold)
	assert.True(t, decimal.NewFromInt(100).Equal(first.PriceChangePct))
	assert.True(t, decimal.NewFromInt(500).Equal(first.ValueChange), "full value counted as gain")
}

func TestComputeDeltaSoldPosition(t *testing.T) {
	prev := snapshotOn(t, day(2024, 1, 15),
		metricsFor("AAA", 100, 10, 10),
		metricsFor("GONE", 10, 50, 60), // value 600
	)
	current := snapshotOn(t, day(2024, 1, 16), metricsFor("AAA", 100, 10, 9.5)) // -5%

	change := ComputeDelta(current, prev)
	require.NotNil(t, change)

	require.Len(t, change.TopLosers, 2)
	first := change.TopLosers[0]
	assert.Equal(t, "GONE", first.Ticker, "the -100 sentinel ranks below a real -5 percent move")
	assert.True(t, first.IsSold)
	assert.False(t, first.IsNew)
	assert.True(t, decimal.NewFromInt(-100).Equal(first.PriceChangePct))
	assert.True(t, decimal.NewFromInt(-600).Equal(first.ValueChange), "previous value counted as loss")

	assert.Equal(t, "AAA", change.TopLosers[1].Ticker)
}

func TestComputeDeltaRanking(t *testing.T) {
	prev := snapshotOn(t, day(2024, 1, 15),
		metricsFor("A", 10, 10, 100),
		metricsFor("B", 10, 10, 100),
		metricsFor("C", 10, 10, 100),
		metricsFor("D", 10, 10, 100),
		metricsFor("E", 10, 10, 100),
		metricsFor("F", 10, 10, 100),
		metricsFor("G", 10, 10, 100),
	)
	current := snapshotOn(t, day(2024, 1, 16),
		metricsFor("A", 10, 10, 108), // +8%
		metricsFor("B", 10, 10, 103), // +3%
		metricsFor("C", 10, 10, 115), // +15%
		metricsFor("D", 10, 10, 101), // +1%
		metricsFor("E", 10, 10, 97),  // -3%
		metricsFor("F", 10, 10, 88),  // -12%
		metricsFor("G", 10, 10, 100), // flat
	)

	change := ComputeDelta(current, prev)
	require.NotNil(t, change)

	assert.Equal(t, []string{"C", "A", "B"}, moverTickers(change.TopGainers),
		"three best gainers, descending")
	assert.Equal(t, []string{"F", "E"}, moverTickers(change.TopLosers),
		"losers most negative first, no back-fill to three")
}

func TestComputeDeltaTieBreak(t *testing.T) {
	prev := snapshotOn(t, day(2024, 1, 15),
		metricsFor("ZEBRA", 10, 10, 100),
		metricsFor("ALPHA", 10, 10, 100),
	)
	current := snapshotOn(t, day(2024, 1, 16),
		metricsFor("ZEBRA", 10, 10, 105),
		metricsFor("ALPHA", 10, 10, 105),
	)

	change := ComputeDelta(current, prev)
	require.NotNil(t, change)
	assert.Equal(t, []string{"ALPHA", "ZEBRA"}, moverTickers(change.TopGainers),
		"equal moves order by ticker")
}

func TestComputeDeltaPortfolioFields(t *testing.T) {
	prev := snapshotOn(t, day(2024, 1, 15), metricsFor("AAA", 100, 10, 12))
	current := snapshotOn(t, day(2024, 1, 16), metricsFor("AAA", 100, 10, 13))

	change := ComputeDelta(current, prev)
	require.NotNil(t, change)

	assert.True(t, change.ValueChange.Equal(current.Summary.TotalValue.Sub(prev.Summary.TotalValue)))
	assert.True(t, change.PLChange.Equal(current.Summary.UnrealizedPL.Sub(prev.Summary.UnrealizedPL)))
	assert.True(t, change.DivChange.Equal(current.Summary.DividendIncome.Sub(prev.Summary.DividendIncome)))
	assert.True(t, change.ReturnChange.Equal(current.Summary.TotalReturn.Sub(prev.Summary.TotalReturn)))
	assert.Equal(t, day(2024, 1, 16), change.Date)
	assert.Equal(t, day(2024, 1, 15), change.PrevDate)
}

func TestComputeDeltaDateAnomalies(t *testing.T) {
	metrics := metricsFor("AAA", 100, 10, 10)

	t.Run("multi-day gap is noted but not pro-rated", func(t *testing.T) {
		prev := snapshotOn(t, day(2024, 1, 12), metrics)
		current := snapshotOn(t, day(2024, 1, 15), metricsFor("AAA", 100, 10, 11))

		change := ComputeDelta(current, prev)
		require.NotNil(t, change)
		assert.Equal(t, 3, change.DaysBetween)
		assert.Contains(t, change.Notes, "Days between: 3")
		// Same formula as a one-day delta; no interpolation.
		assert.True(t, decimal.NewFromInt(100).Equal(change.ValueChange))
	})

	t.Run("duplicate same-day snapshot is noted", func(t *testing.T) {
		prev := snapshotOn(t, day(2024, 1, 15), metrics)
		current := snapshotOn(t, day(2024, 1, 15), metrics)

		change := ComputeDelta(current, prev)
		require.NotNil(t, change)
		assert.Equal(t, 0, change.DaysBetween)
		assert.Contains(t, change.Notes, "Duplicate same-day snapshot")
	})

	t.Run("out-of-order dates are noted", func(t *testing.T) {
		prev := snapshotOn(t, day(2024, 1, 16), metrics)
		current := snapshotOn(t, day(2024, 1, 15), metrics)

		change := ComputeDelta(current, prev)
		require.NotNil(t, change)
		assert.Equal(t, -1, change.DaysBetween)
		assert.Contains(t, change.Notes, "Out-of-order snapshot dates")
	})

	t.Run("consecutive days carry no notes", func(t *testing.T) {
		prev := snapshotOn(t, day(2024, 1, 15), metrics)
		current := snapshotOn(t, day(2024, 1, 16), metrics)

		change := ComputeDelta(current, prev)
		require.NotNil(t, change)
		assert.Empty(t, change.Notes)
	})
}
