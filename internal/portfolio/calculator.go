package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tcollier/portfolio-report/internal/formulas"
	"github.com/tcollier/portfolio-report/internal/marketdata"
	"github.com/tcollier/portfolio-report/internal/models"
)

const daysPerYear = 365.25

var hundred = decimal.NewFromInt(100)

// ComputeMetrics derives the full metrics record for one position from its
// price history, dividend events, and the benchmark series. An error means
// the position cannot be valued and must be excluded from the snapshot;
// the caller logs and continues with the remaining positions.
func ComputeMetrics(pos models.Position, prices marketdata.Series, dividends []marketdata.Dividend, benchmark marketdata.Series, asOf time.Time) (*models.PositionMetrics, error) {
	if prices.Empty() {
		return nil, fmt.Errorf("no price history for %s", pos.Ticker)
	}

	purchaseDay := marketdata.DayOf(pos.PurchaseDate)
	purchasePrice, ok := prices.CloseOnOrAfter(purchaseDay)
	if !ok {
		return nil, fmt.Errorf("no price for %s on or after purchase date %s", pos.Ticker, purchaseDay.Format("2006-01-02"))
	}
	if !purchasePrice.IsPositive() {
		return nil, fmt.Errorf("invalid purchase price %s for %s", purchasePrice, pos.Ticker)
	}

	latest, _ := prices.Latest()
	currentPrice := latest.Close
	if !currentPrice.IsPositive() {
		return nil, fmt.Errorf("invalid current price %s for %s", currentPrice, pos.Ticker)
	}

	costBasis := pos.Quantity.Mul(purchasePrice).Round(2)
	marketValue := pos.Quantity.Mul(currentPrice).Round(2)
	unrealizedPL := marketValue.Sub(costBasis)

	// Dividends count from the first ex-date on or after purchase. The
	// trailing-year sum is the annualized rate for yield on cost; for a
	// holding younger than a year the two sums coincide.
	perShareSincePurchase := decimal.Zero
	perShareTrailingYear := decimal.Zero
	yearAgo := marketdata.DayOf(asOf.AddDate(0, 0, -365))
	for _, d := range dividends {
		if d.ExDate.Before(purchaseDay) {
			continue
		}
		perShareSincePurchase = perShareSincePurchase.Add(d.Amount)
		if !d.ExDate.Before(yearAgo) {
			perShareTrailingYear = perShareTrailingYear.Add(d.Amount)
		}
	}
	dividendIncome := pos.Quantity.Mul(perShareSincePurchase).Round(2)
	totalReturn := unrealizedPL.Add(dividendIncome)

	return &models.PositionMetrics{
		Ticker:          pos.Ticker,
		Quantity:        pos.Quantity,
		PurchaseDate:    purchaseDay,
		PurchasePrice:   purchasePrice,
		CurrentPrice:    currentPrice,
		CostBasis:       costBasis,
		MarketValue:     marketValue,
		UnrealizedPL:    unrealizedPL,
		UnrealizedPLPct: pct(unrealizedPL, costBasis),
		DividendIncome:  dividendIncome,
		TotalReturn:     totalReturn,
		TotalReturnPct:  pct(totalReturn, costBasis),
		YieldOnCost:     pct(perShareTrailingYear, purchasePrice),
		CAGR:            computeCAGR(costBasis, marketValue.Add(dividendIncome), purchaseDay, asOf),
		Beta:            computeBeta(prices, benchmark, purchaseDay),
	}, nil
}

// pct returns part/whole*100, or zero when the denominator is zero.
func pct(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(4)
}

// computeCAGR annualizes the growth of cost basis into ending value
// (market value plus dividends) over the holding period. Holdings under
// one day cannot be annualized; that is a nil, not a zero.
func computeCAGR(costBasis, endingValue decimal.Decimal, purchaseDay, asOf time.Time) *decimal.Decimal {
	daysHeld := asOf.Sub(purchaseDay).Hours() / 24
	if daysHeld < 1 || costBasis.IsZero() {
		return nil
	}

	ratio := endingValue.Div(costBasis).InexactFloat64()
	if ratio <= 0 {
		return nil
	}

	years := daysHeld / daysPerYear
	growth := math.Pow(ratio, 1/years) - 1
	if math.IsNaN(growth) || math.IsInf(growth, 0) {
		return nil
	}

	out := decimal.NewFromFloat(growth * 100).Round(4)
	return &out
}

// computeBeta regresses the position's daily returns against the
// benchmark's over their common trading days since purchase.
func computeBeta(prices, benchmark marketdata.Series, since time.Time) decimal.Decimal {
	assetCloses, benchCloses := marketdata.AlignCloses(prices, benchmark, since)
	beta := formulas.Beta(
		formulas.CalculateReturns(assetCloses),
		formulas.CalculateReturns(benchCloses),
	)
	return decimal.NewFromFloat(beta).Round(4)
}
