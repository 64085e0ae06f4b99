package marketdata

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one daily adjusted-close observation.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Dividend is one per-share dividend event.
type Dividend struct {
	ExDate time.Time       `json:"ex_date"`
	Amount decimal.Decimal `json:"amount"`
}

// Series is a daily adjusted-close price series for one symbol, ordered by
// date ascending.
type Series struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Empty reports whether the series has no observations.
func (s Series) Empty() bool {
	return len(s.Points) == 0
}

// Latest returns the most recent observation.
func (s Series) Latest() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// CloseOnOrAfter returns the adjusted close of the first trading day on or
// after the given date. Used to resolve purchase prices when the purchase
// date falls on a weekend or holiday.
func (s Series) CloseOnOrAfter(date time.Time) (decimal.Decimal, bool) {
	day := DayOf(date)
	for _, p := range s.Points {
		if !p.Date.Before(day) {
			return p.Close, true
		}
	}
	return decimal.Zero, false
}

// AlignCloses returns the closes of both series on their common trading
// days since the given date, ordered by date ascending. The two result
// slices always have equal length.
func AlignCloses(a, b Series, since time.Time) ([]float64, []float64) {
	day := DayOf(since)

	bCloses := make(map[time.Time]float64, len(b.Points))
	for _, p := range b.Points {
		bCloses[DayOf(p.Date)] = p.Close.InexactFloat64()
	}

	var dates []time.Time
	aCloses := make(map[time.Time]float64, len(a.Points))
	for _, p := range a.Points {
		d := DayOf(p.Date)
		if d.Before(day) {
			continue
		}
		if _, ok := bCloses[d]; !ok {
			continue
		}
		if _, ok := aCloses[d]; ok {
			continue
		}
		aCloses[d] = p.Close.InexactFloat64()
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	xs := make([]float64, len(dates))
	ys := make([]float64, len(dates))
	for i, d := range dates {
		xs[i] = aCloses[d]
		ys[i] = bCloses[d]
	}
	return xs, ys
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
