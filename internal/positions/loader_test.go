package positions

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	log := zerolog.Nop()

	t.Run("parses valid rows", func(t *testing.T) {
		input := "Symbol,Shares,PurchaseDate\n" +
			"AAPL,10,01/15/2024\n" +
			"msft,2.5,06/30/2023\n"

		got, err := Parse(strings.NewReader(input), log)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, "AAPL", got[0].Ticker)
		assert.True(t, decimal.NewFromInt(10).Equal(got[0].Quantity))
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got[0].PurchaseDate)

		assert.Equal(t, "MSFT", got[1].Ticker, "ticker should be upper-cased")
		assert.True(t, decimal.NewFromFloat(2.5).Equal(got[1].Quantity))
	})

	t.Run("skips rows with bad share counts", func(t *testing.T) {
		input := "Symbol,Shares,PurchaseDate\n" +
			"AAPL,ten,01/15/2024\n" +
			"MSFT,0,01/15/2024\n" +
			"GOOG,-3,01/15/2024\n" +
			"NVDA,4,01/15/2024\n"

		got, err := Parse(strings.NewReader(input), log)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "NVDA", got[0].Ticker)
	})

	t.Run("skips rows with unparseable dates", func(t *testing.T) {
		input := "Symbol,Shares,PurchaseDate\n" +
			"AAPL,10,2024-01-15\n" +
			"MSFT,5,13/45/2024\n" +
			"GOOG,2,03/01/2024\n"

		got, err := Parse(strings.NewReader(input), log)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "GOOG", got[0].Ticker)
	})

	t.Run("skips short rows", func(t *testing.T) {
		input := "Symbol,Shares,PurchaseDate\n" +
			"AAPL,10\n" +
			"MSFT,5,02/01/2024\n"

		got, err := Parse(strings.NewReader(input), log)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "MSFT", got[0].Ticker)
	})

	t.Run("duplicate ticker keeps first lot", func(t *testing.T) {
		input := "Symbol,Shares,PurchaseDate\n" +
			"AAPL,10,01/15/2024\n" +
			"AAPL,99,06/01/2024\n"

		got, err := Parse(strings.NewReader(input), log)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, decimal.NewFromInt(10).Equal(got[0].Quantity))
	})

	t.Run("preserves source order", func(t *testing.T) {
		input := "Symbol,Shares,PurchaseDate\n" +
			"ZZZ,1,01/15/2024\n" +
			"AAA,1,01/15/2024\n" +
			"MMM,1,01/15/2024\n"

		got, err := Parse(strings.NewReader(input), log)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "ZZZ", got[0].Ticker)
		assert.Equal(t, "AAA", got[1].Ticker)
		assert.Equal(t, "MMM", got[2].Ticker)
	})

	t.Run("empty file returns ErrEmptySource", func(t *testing.T) {
		_, err := Parse(strings.NewReader(""), log)
		assert.ErrorIs(t, err, ErrEmptySource)
	})

	t.Run("header-only file returns ErrEmptySource", func(t *testing.T) {
		_, err := Parse(strings.NewReader("Symbol,Shares,PurchaseDate\n"), log)
		assert.ErrorIs(t, err, ErrEmptySource)
	})

	t.Run("all rows invalid returns ErrEmptySource", func(t *testing.T) {
		input := "Symbol,Shares,PurchaseDate\n" +
			",10,01/15/2024\n" +
			"AAPL,bad,01/15/2024\n"

		_, err := Parse(strings.NewReader(input), log)
		assert.ErrorIs(t, err, ErrEmptySource)
	})
}

func TestLoadFile(t *testing.T) {
	log := zerolog.Nop()

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := LoadFile("testdata/does-not-exist.csv", log)
		assert.Error(t, err)
	})
}
