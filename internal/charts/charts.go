package charts

import (
	"bytes"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tcollier/portfolio-report/internal/models"
)

const (
	chartWidth  = 1024
	chartHeight = 512

	gainColor  = "27AE60"
	lossColor  = "E74C3C"
	valueColor = "2E86C1"
)

// RenderPerformanceChart renders a per-ticker unrealized P&L percent bar
// chart as a PNG
func RenderPerformanceChart(positions []models.PositionMetrics) ([]byte, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("no positions to chart")
	}

	bars := make([]chart.Value, 0, len(positions))
	for _, p := range positions {
		hex := gainColor
		if p.UnrealizedPLPct.IsNegative() {
			hex = lossColor
		}
		bars = append(bars, chart.Value{
			Label: p.Ticker,
			Value: p.UnrealizedPLPct.InexactFloat64(),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(hex),
				StrokeColor: drawing.ColorFromHex(hex),
			},
		})
	}

	graph := chart.BarChart{
		Title:        "Unrealized P&L % by Position",
		Width:        chartWidth,
		Height:       chartHeight,
		BarWidth:     48,
		UseBaseValue: true,
		BaseValue:    0.0,
		Bars:         bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render performance chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTrendChart renders the trailing-window total value and cost basis
// lines as a PNG. At least two points are required to draw a line.
func RenderTrendChart(points []models.TrendPoint, days int) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 snapshots for a trend chart, have %d", len(points))
	}

	dates := make([]time.Time, 0, len(points))
	values := make([]float64, 0, len(points))
	costs := make([]float64, 0, len(points))
	for _, p := range points {
		dates = append(dates, p.Date)
		values = append(values, p.TotalValue.InexactFloat64())
		costs = append(costs, p.TotalCost.InexactFloat64())
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Portfolio Performance - Last %d Days", days),
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Portfolio Value",
				XValues: dates,
				YValues: values,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex(valueColor),
					StrokeWidth: 2,
				},
			},
			chart.TimeSeries{
				Name:    "Cost Basis",
				XValues: dates,
				YValues: costs,
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex(lossColor),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render trend chart: %w", err)
	}
	return buf.Bytes(), nil
}
