package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tcollier/portfolio-report/internal/models"
)

// Attachment is a file attached to the report email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Payload is a fully rendered report ready to hand to a mail sender
type Payload struct {
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Assemble renders the email for one run. A nil change means this is the
// first snapshot, which gets the tracking-started framing instead of a
// comparison section. Monday editions add a weekly recap pointing at the
// trend chart.
func Assemble(snap *models.Snapshot, change *models.DailyChange, weekday time.Weekday, attachments []Attachment) Payload {
	date := snap.Date.Format("2006-01-02")

	return Payload{
		Subject:     fmt.Sprintf("Daily Portfolio Report - %s", date),
		Text:        renderText(snap, change, weekday),
		HTML:        renderHTML(snap, change, weekday),
		Attachments: attachments,
	}
}

func renderText(snap *models.Snapshot, change *models.DailyChange, weekday time.Weekday) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Daily Portfolio Update - %s\n\n", snap.Date.Format("2006-01-02"))

	b.WriteString("--- Summary ---\n")
	fmt.Fprintf(&b, "Total Invested:   %s\n", money(snap.Summary.TotalCost))
	fmt.Fprintf(&b, "Current Value:    %s\n", money(snap.Summary.TotalValue))
	fmt.Fprintf(&b, "Unrealized P&L:   %s (%s)\n", money(snap.Summary.UnrealizedPL), pct(snap.Summary.UnrealizedPLPct))
	fmt.Fprintf(&b, "Dividend Income:  %s\n", money(snap.Summary.DividendIncome))
	fmt.Fprintf(&b, "Total Return:     %s (%s)\n", money(snap.Summary.TotalReturn), pct(snap.Summary.TotalReturnPct))
	fmt.Fprintf(&b, "Positions:        %d\n", snap.Summary.PositionCount)

	if change == nil {
		b.WriteString("\nFirst snapshot - no comparison available. Historical tracking started today.\n")
	} else {
		fmt.Fprintf(&b, "\n--- Day-over-Day (since %s) ---\n", change.PrevDate.Format("2006-01-02"))
		fmt.Fprintf(&b, "Value Change:     %s (%s)\n", signedMoney(change.ValueChange), signedPct(change.ValueChangePct))
		fmt.Fprintf(&b, "P&L Change:       %s\n", signedMoney(change.PLChange))
		fmt.Fprintf(&b, "Dividend Change:  %s\n", signedMoney(change.DivChange))
		fmt.Fprintf(&b, "Return Change:    %s\n", signedMoney(change.ReturnChange))

		if len(change.TopGainers) > 0 {
			b.WriteString("\nTop Gainers:\n")
			for _, m := range change.TopGainers {
				fmt.Fprintf(&b, "  %-6s %-9s %s\n", m.Ticker, moverLabel(m), signedMoney(m.ValueChange))
			}
		}
		if len(change.TopLosers) > 0 {
			b.WriteString("\nTop Losers:\n")
			for _, m := range change.TopLosers {
				fmt.Fprintf(&b, "  %-6s %-9s %s\n", m.Ticker, moverLabel(m), signedMoney(m.ValueChange))
			}
		}
		if len(change.Notes) > 0 {
			fmt.Fprintf(&b, "\nNotes: %s\n", strings.Join(change.Notes, "; "))
		}
	}

	b.WriteString("\n--- Dashboard ---\n")
	fmt.Fprintf(&b, "%-7s %10s %10s %12s %9s %10s %9s %8s %8s %6s\n",
		"Ticker", "Qty", "Price", "Mkt Value", "P&L %", "Div", "Ret %", "YoC", "CAGR", "Beta")
	for _, p := range snap.Positions {
		fmt.Fprintf(&b, "%-7s %10s %10s %12s %9s %10s %9s %8s %8s %6s\n",
			p.Ticker,
			p.Quantity.String(),
			p.CurrentPrice.StringFixed(2),
			p.MarketValue.StringFixed(2),
			pct(p.UnrealizedPLPct),
			p.DividendIncome.StringFixed(2),
			pct(p.TotalReturnPct),
			pct(p.YieldOnCost),
			cagrLabel(p.CAGR),
			p.Beta.StringFixed(2),
		)
	}

	if weekday == time.Monday {
		b.WriteString("\n--- Weekly Recap ---\n")
		b.WriteString("Monday edition: the attached trend chart covers the trailing window of portfolio value against cost basis.\n")
	}

	return b.String()
}

func renderHTML(snap *models.Snapshot, change *models.DailyChange, weekday time.Weekday) string {
	var b strings.Builder

	b.WriteString(`<html><body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	fmt.Fprintf(&b, `<h2 style="color: #2E86C1;">Daily Portfolio Update - %s</h2>`, snap.Date.Format("2006-01-02"))

	b.WriteString(`<table cellpadding="6" cellspacing="0" style="border-collapse: collapse;">`)
	summaryRow(&b, "Total Invested", money(snap.Summary.TotalCost))
	summaryRow(&b, "Current Value", money(snap.Summary.TotalValue))
	summaryRow(&b, "Unrealized P&L", fmt.Sprintf("%s (%s)", money(snap.Summary.UnrealizedPL), pct(snap.Summary.UnrealizedPLPct)))
	summaryRow(&b, "Dividend Income", money(snap.Summary.DividendIncome))
	summaryRow(&b, "Total Return", fmt.Sprintf("%s (%s)", money(snap.Summary.TotalReturn), pct(snap.Summary.TotalReturnPct)))
	summaryRow(&b, "Positions", fmt.Sprintf("%d", snap.Summary.PositionCount))
	b.WriteString(`</table>`)

	if change == nil {
		b.WriteString(`<p><em>First snapshot - no comparison available. Historical tracking started today.</em></p>`)
	} else {
		fmt.Fprintf(&b, `<h3>Day-over-Day (since %s)</h3>`, change.PrevDate.Format("2006-01-02"))
		fmt.Fprintf(&b, `<p>Value: <b style="color: %s;">%s (%s)</b> &middot; P&amp;L: %s &middot; Dividends: %s &middot; Return: %s</p>`,
			changeColor(change.ValueChange),
			signedMoney(change.ValueChange), signedPct(change.ValueChangePct),
			signedMoney(change.PLChange), signedMoney(change.DivChange), signedMoney(change.ReturnChange))

		if len(change.TopGainers) > 0 {
			moverTable(&b, "Top Gainers", change.TopGainers)
		}
		if len(change.TopLosers) > 0 {
			moverTable(&b, "Top Losers", change.TopLosers)
		}
		if len(change.Notes) > 0 {
			fmt.Fprintf(&b, `<p style="color: #E67E22;"><em>%s</em></p>`, strings.Join(change.Notes, "; "))
		}
	}

	b.WriteString(`<h3>Positions</h3>`)
	b.WriteString(`<table cellpadding="6" cellspacing="0" border="1" style="border-collapse: collapse; border-color: #ddd;">`)
	b.WriteString(`<tr style="background-color: #2E86C1; color: #fff;">` +
		`<th>Ticker</th><th>Qty</th><th>Price</th><th>Mkt Value</th><th>P&amp;L %</th>` +
		`<th>Div</th><th>Ret %</th><th>YoC</th><th>CAGR</th><th>Beta</th></tr>`)
	for _, p := range snap.Positions {
		fmt.Fprintf(&b, `<tr><td>%s</td><td align="right">%s</td><td align="right">%s</td><td align="right">%s</td>`+
			`<td align="right" style="color: %s;">%s</td><td align="right">%s</td><td align="right">%s</td>`+
			`<td align="right">%s</td><td align="right">%s</td><td align="right">%s</td></tr>`,
			p.Ticker,
			p.Quantity.String(),
			p.CurrentPrice.StringFixed(2),
			p.MarketValue.StringFixed(2),
			changeColor(p.UnrealizedPL), pct(p.UnrealizedPLPct),
			p.DividendIncome.StringFixed(2),
			pct(p.TotalReturnPct),
			pct(p.YieldOnCost),
			cagrLabel(p.CAGR),
			p.Beta.StringFixed(2),
		)
	}
	b.WriteString(`</table>`)

	if weekday == time.Monday {
		b.WriteString(`<h3>Weekly Recap</h3>`)
		b.WriteString(`<p>Monday edition: the attached trend chart covers the trailing window of portfolio value against cost basis.</p>`)
	}

	b.WriteString(`<p style="color: #999; font-size: 12px;">Full dashboard CSV and charts are attached.</p>`)
	b.WriteString(`</body></html>`)

	return b.String()
}

func summaryRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, `<tr><td style="color: #666;">%s</td><td align="right"><b>%s</b></td></tr>`, label, value)
}

func moverTable(b *strings.Builder, title string, movers []models.MoverEntry) {
	fmt.Fprintf(b, `<p><b>%s</b></p>`, title)
	b.WriteString(`<table cellpadding="4" cellspacing="0" style="border-collapse: collapse;">`)
	for _, m := range movers {
		fmt.Fprintf(b, `<tr><td><b>%s</b></td><td align="right">%s</td><td align="right">%s</td></tr>`,
			m.Ticker, moverLabel(m), signedMoney(m.ValueChange))
	}
	b.WriteString(`</table>`)
}

// moverLabel renders the percent move, with sentinel labels for positions
// that entered or left the portfolio since the prior snapshot
func moverLabel(m models.MoverEntry) string {
	if m.IsNew {
		return "NEW"
	}
	if m.IsSold {
		return "SOLD"
	}
	return signedPct(m.PriceChangePct)
}

func cagrLabel(cagr *decimal.Decimal) string {
	if cagr == nil {
		return "-"
	}
	return pct(*cagr)
}

func changeColor(d decimal.Decimal) string {
	if d.IsNegative() {
		return "#E74C3C"
	}
	return "#27AE60"
}

// money formats a dollar amount with thousands separators, e.g. -$1,234.56
func money(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}

	if d.IsNegative() {
		return "-$" + b.String() + frac
	}
	return "$" + b.String() + frac
}

func signedMoney(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + money(d)
	}
	return money(d)
}

func pct(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

func signedPct(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + pct(d)
	}
	return pct(d)
}
