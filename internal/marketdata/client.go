package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Provider fetches the daily adjusted-close history and dividend events
// for one symbol. Implementations may be partial or fail per symbol; a
// failure never concerns any other symbol.
type Provider interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) (Series, []Dividend, error)
}

// Client is a Yahoo Finance chart API client.
type Client struct {
	client     *http.Client
	baseURL    string
	maxRetries int
	log        zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:    "https://query1.finance.yahoo.com",
		maxRetries: 3,
		log:        log.With().Str("client", "yahoo").Logger(),
	}
}

// chartResponse is the subset of the chart API payload this client reads.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// FetchHistory fetches daily adjusted closes and dividend events for the
// symbol over [start, end], retrying transient failures with exponential
// backoff.
func (c *Client) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (Series, []Dividend, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		series, dividends, err := c.fetchOnce(ctx, symbol, start, end)
		if err == nil {
			c.log.Debug().
				Str("symbol", symbol).
				Int("points", len(series.Points)).
				Int("dividends", len(dividends)).
				Msg("Fetched history")
			return series, dividends, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < c.maxRetries-1 {
			waitTime := time.Duration(1<<uint(attempt)) * time.Second // exponential backoff
			c.log.Warn().Err(err).
				Str("symbol", symbol).
				Int("attempt", attempt+1).
				Dur("wait", waitTime).
				Msg("Failed to fetch history, retrying")
			time.Sleep(waitTime)
		}
	}

	return Series{}, nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, symbol string, start, end time.Time) (Series, []Dividend, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", strconv.FormatInt(start.Unix(), 10))
	params.Add("period2", strconv.FormatInt(end.Unix(), 10))
	params.Add("events", "div")
	params.Add("includeAdjustedClose", "true")

	reqURL := c.baseURL + "/v8/finance/chart/" + url.QueryEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return Series{}, nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Series{}, nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Series{}, nil, fmt.Errorf("chart API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Series{}, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Series{}, nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		return Series{}, nil, fmt.Errorf("chart API error: %v", result.Chart.Error)
	}
	if len(result.Chart.Result) == 0 {
		return Series{}, nil, fmt.Errorf("no chart data returned for symbol %s", symbol)
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		return Series{}, nil, fmt.Errorf("no quote data returned for symbol %s", symbol)
	}
	quote := chartData.Indicators.Quote[0]

	var adjCloseData []float64
	if len(chartData.Indicators.AdjClose) > 0 {
		adjCloseData = chartData.Indicators.AdjClose[0].AdjClose
	}

	series := Series{Symbol: symbol}
	for i, ts := range chartData.Timestamp {
		// Yahoo returns nulls for halted days; they decode to zero.
		closePrice := 0.0
		if i < len(adjCloseData) && adjCloseData[i] > 0 {
			closePrice = adjCloseData[i]
		} else if i < len(quote.Close) && quote.Close[i] > 0 {
			closePrice = quote.Close[i]
		}
		if closePrice <= 0 {
			continue
		}

		series.Points = append(series.Points, PricePoint{
			Date:  DayOf(time.Unix(ts, 0)),
			Close: decimal.NewFromFloat(closePrice).Round(4),
		})
	}

	var dividends []Dividend
	for _, d := range chartData.Events.Dividends {
		if d.Amount <= 0 {
			continue
		}
		dividends = append(dividends, Dividend{
			ExDate: DayOf(time.Unix(d.Date, 0)),
			Amount: decimal.NewFromFloat(d.Amount),
		})
	}
	sort.Slice(dividends, func(i, j int) bool { return dividends[i].ExDate.Before(dividends[j].ExDate) })

	return series, dividends, nil
}
