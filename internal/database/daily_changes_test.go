package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcollier/portfolio-report/internal/models"
)

func TestDailyChangeRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("AppendDailyChange assigns id and created_at", func(t *testing.T) {
		testDB.TruncateAll(t)

		change := &models.DailyChange{
			Date:           time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			PrevDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			DaysBetween:    1,
			ValueChange:    decimal.NewFromFloat(150.25),
			ValueChangePct: decimal.NewFromFloat(1.5025),
			PLChange:       decimal.NewFromFloat(150.25),
			DivChange:      decimal.Zero,
			ReturnChange:   decimal.NewFromFloat(150.25),
		}

		err := testDB.AppendDailyChange(change)
		require.NoError(t, err)
		assert.NotZero(t, change.ID)
		assert.False(t, change.CreatedAt.IsZero())
	})

	t.Run("GetLatestDailyChange round-trips movers and notes", func(t *testing.T) {
		testDB.TruncateAll(t)

		change := &models.DailyChange{
			Date:           time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC),
			PrevDate:       time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			DaysBetween:    3,
			ValueChange:    decimal.NewFromFloat(-75.50),
			ValueChangePct: decimal.NewFromFloat(-0.7412),
			PLChange:       decimal.NewFromFloat(-80),
			DivChange:      decimal.NewFromFloat(4.50),
			ReturnChange:   decimal.NewFromFloat(-75.50),
			TopGainers: []models.MoverEntry{
				{
					Ticker:         "NVDA",
					PriceChange:    decimal.NewFromFloat(12.40),
					PriceChangePct: decimal.NewFromFloat(2.1),
					ValueChange:    decimal.NewFromFloat(124),
				},
				{
					Ticker:      "CRM",
					PriceChange: decimal.Zero,
					ValueChange: decimal.NewFromFloat(500),
					IsNew:       true,
				},
			},
			TopLosers: []models.MoverEntry{
				{
					Ticker:      "INTC",
					ValueChange: decimal.NewFromFloat(-320),
					IsSold:      true,
				},
			},
			Notes: []string{"Days between: 3"},
		}

		require.NoError(t, testDB.AppendDailyChange(change))

		got, err := testDB.GetLatestDailyChange()
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Equal(t, change.ID, got.ID)
		assert.Equal(t, "2024-01-19", got.Date.Format("2006-01-02"))
		assert.Equal(t, "2024-01-16", got.PrevDate.Format("2006-01-02"))
		assert.Equal(t, 3, got.DaysBetween)
		assert.True(t, decimal.NewFromFloat(-75.50).Equal(got.ValueChange))
		assert.True(t, decimal.NewFromFloat(-0.7412).Equal(got.ValueChangePct))
		assert.True(t, decimal.NewFromFloat(4.50).Equal(got.DivChange))

		require.Len(t, got.TopGainers, 2)
		assert.Equal(t, "NVDA", got.TopGainers[0].Ticker)
		assert.True(t, decimal.NewFromFloat(12.40).Equal(got.TopGainers[0].PriceChange))
		assert.False(t, got.TopGainers[0].IsNew)
		assert.Equal(t, "CRM", got.TopGainers[1].Ticker)
		assert.True(t, got.TopGainers[1].IsNew)

		require.Len(t, got.TopLosers, 1)
		assert.Equal(t, "INTC", got.TopLosers[0].Ticker)
		assert.True(t, got.TopLosers[0].IsSold)
		assert.True(t, decimal.NewFromFloat(-320).Equal(got.TopLosers[0].ValueChange))

		assert.Equal(t, []string{"Days between: 3"}, got.Notes)
	})

	t.Run("empty movers and notes round-trip as empty", func(t *testing.T) {
		testDB.TruncateAll(t)

		change := &models.DailyChange{
			Date:        time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			PrevDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			DaysBetween: 1,
		}
		require.NoError(t, testDB.AppendDailyChange(change))

		got, err := testDB.GetLatestDailyChange()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.TopGainers)
		assert.Empty(t, got.TopLosers)
		assert.Empty(t, got.Notes)
	})

	t.Run("GetLatestDailyChange returns nil when none recorded", func(t *testing.T) {
		testDB.TruncateAll(t)

		got, err := testDB.GetLatestDailyChange()
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetLatestDailyChange picks newest date then newest row", func(t *testing.T) {
		testDB.TruncateAll(t)

		older := &models.DailyChange{
			Date:        time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			PrevDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			DaysBetween: 1,
		}
		newer := &models.DailyChange{
			Date:        time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
			PrevDate:    time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			DaysBetween: 1,
		}
		rerun := &models.DailyChange{
			Date:        time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
			PrevDate:    time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
			DaysBetween: 0,
			Notes:       []string{"Duplicate same-day snapshot"},
		}

		require.NoError(t, testDB.AppendDailyChange(newer))
		require.NoError(t, testDB.AppendDailyChange(older))
		require.NoError(t, testDB.AppendDailyChange(rerun))

		got, err := testDB.GetLatestDailyChange()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rerun.ID, got.ID)
		assert.Equal(t, 0, got.DaysBetween)
		assert.Equal(t, []string{"Duplicate same-day snapshot"}, got.Notes)
	})
}
