package report

import (
	"bytes"
	"encoding/csv"

	"github.com/tcollier/portfolio-report/internal/models"
)

// WriteDashboardCSV renders the per-position dashboard as a CSV attachment
func WriteDashboardCSV(snap *models.Snapshot) []byte {
	records := [][]string{{
		"ticker", "quantity", "purchase_date", "purchase_price", "current_price",
		"cost_basis", "market_value", "unrealized_pl", "unrealized_pl_pct",
		"dividend_income", "total_return", "total_return_pct",
		"yield_on_cost", "cagr", "beta",
	}}

	for _, p := range snap.Positions {
		cagr := ""
		if p.CAGR != nil {
			cagr = p.CAGR.StringFixed(2)
		}
		records = append(records, []string{
			p.Ticker,
			p.Quantity.String(),
			p.PurchaseDate.Format("2006-01-02"),
			p.PurchasePrice.StringFixed(2),
			p.CurrentPrice.StringFixed(2),
			p.CostBasis.StringFixed(2),
			p.MarketValue.StringFixed(2),
			p.UnrealizedPL.StringFixed(2),
			p.UnrealizedPLPct.StringFixed(2),
			p.DividendIncome.StringFixed(2),
			p.TotalReturn.StringFixed(2),
			p.TotalReturnPct.StringFixed(2),
			p.YieldOnCost.StringFixed(2),
			cagr,
			p.Beta.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(records)
	return buf.Bytes()
}
