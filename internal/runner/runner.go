package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tcollier/portfolio-report/internal/charts"
	"github.com/tcollier/portfolio-report/internal/config"
	"github.com/tcollier/portfolio-report/internal/mailer"
	"github.com/tcollier/portfolio-report/internal/marketdata"
	"github.com/tcollier/portfolio-report/internal/models"
	"github.com/tcollier/portfolio-report/internal/portfolio"
	"github.com/tcollier/portfolio-report/internal/positions"
	"github.com/tcollier/portfolio-report/internal/report"
)

// ErrDeliveryFailed marks a run whose snapshot and deltas were persisted
// but whose report could not be delivered. The recorded history is intact
// and the next run is unaffected; callers branch exit codes on it.
var ErrDeliveryFailed = errors.New("report delivery failed")

// The fetch window opens a few days before the earliest purchase so a
// weekend or holiday purchase still resolves to the next trading day's
// close.
const fetchStartBufferDays = 5

// Store defines the persistence operations one report run needs.
type Store interface {
	GetLatestSnapshot() (*models.Snapshot, error)
	AppendSnapshot(s *models.Snapshot) error
	AppendDailyChange(c *models.DailyChange) error
	AppendPositionHistory(date time.Time, metrics []models.PositionMetrics) error
	ListTrendPoints(days int) ([]models.TrendPoint, error)
	CountSnapshotsOnDate(date time.Time) (int, error)
}

// Publisher defines the event notifications a run emits. Publishing is
// best effort; failures never affect the run outcome.
type Publisher interface {
	PublishSnapshotRecorded(ctx context.Context, snap *models.Snapshot, firstRun bool) error
	PublishReportSent(ctx context.Context, snap *models.Snapshot, firstRun bool) error
}

// Runner executes one complete report run: load positions, fetch market
// data, compute metrics, persist the snapshot and day-over-day changes,
// then deliver the report. Everything is persisted before the email goes
// out, so a delivery failure never loses a day of history.
type Runner struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    Store
	market   marketdata.Provider
	sender   mailer.Sender
	producer Publisher

	runMu    sync.Mutex // held for the duration of a run
	statusMu sync.RWMutex
	last     *models.RunStatus
}

// New creates a runner. producer may be nil when event publishing is
// disabled.
func New(cfg *config.Config, log zerolog.Logger, store Store, market marketdata.Provider, sender mailer.Sender, producer Publisher) *Runner {
	return &Runner{
		cfg:      cfg,
		log:      log.With().Str("component", "runner").Logger(),
		store:    store,
		market:   market,
		sender:   sender,
		producer: producer,
	}
}

// Name identifies the runner to the scheduler.
func (r *Runner) Name() string {
	return "daily-report"
}

// LastRun returns a copy of the most recent run's status, or nil before
// the first run completes.
func (r *Runner) LastRun() *models.RunStatus {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	if r.last == nil {
		return nil
	}
	out := *r.last
	return &out
}

// Run executes one report run. Overlapping triggers are skipped, not
// queued: a run that outlasts the schedule interval must not stack.
func (r *Runner) Run() error {
	if !r.runMu.TryLock() {
		r.log.Warn().Msg("Previous run still in progress, skipping this trigger")
		return nil
	}
	defer r.runMu.Unlock()

	runID := uuid.New()
	status := &models.RunStatus{
		RunID:     runID.String(),
		StartedAt: time.Now(),
	}
	r.log.Info().Str("run_id", status.RunID).Msg("Starting report run")

	err := r.runOnce(context.Background(), runID, status)
	status.FinishedAt = time.Now()
	elapsed := status.FinishedAt.Sub(status.StartedAt)

	switch {
	case err == nil:
		status.Outcome = models.RunSucceeded
		r.log.Info().
			Str("run_id", status.RunID).
			Dur("elapsed", elapsed).
			Int("positions", status.PositionCount).
			Strs("excluded", status.ExcludedTickers).
			Msg("Run completed")
	case errors.Is(err, ErrDeliveryFailed):
		status.Outcome = models.RunDeliveryFailed
		status.Error = err.Error()
		r.log.Error().Err(err).
			Str("run_id", status.RunID).
			Dur("elapsed", elapsed).
			Msg("Run persisted but report delivery failed")
	default:
		status.Outcome = models.RunFailed
		status.Error = err.Error()
		r.log.Error().Err(err).
			Str("run_id", status.RunID).
			Dur("elapsed", elapsed).
			Msg("Run failed")
	}

	r.setLast(status)
	return err
}

func (r *Runner) runOnce(ctx context.Context, runID uuid.UUID, status *models.RunStatus) error {
	now := time.Now()

	held, err := positions.LoadFile(r.cfg.Report.PositionsFile, r.log)
	if err != nil {
		return fmt.Errorf("failed to load positions: %w", err)
	}
	r.log.Info().Int("positions", len(held)).Str("file", r.cfg.Report.PositionsFile).Msg("Loaded positions")

	benchmark := r.cfg.Market.BenchmarkSymbol
	symbols := fetchSymbols(held, benchmark)
	results := r.fetchAll(ctx, symbols, fetchWindowStart(held), now)

	bench := results[benchmark]
	if bench.err != nil {
		r.log.Warn().Err(bench.err).Str("symbol", benchmark).Msg("Benchmark fetch failed, betas will be zero")
	}

	var metrics []models.PositionMetrics
	for _, pos := range held {
		res := results[pos.Ticker]
		if res.err != nil {
			r.log.Warn().Err(res.err).Str("ticker", pos.Ticker).Msg("Excluding position, fetch failed")
			status.ExcludedTickers = append(status.ExcludedTickers, pos.Ticker)
			continue
		}
		m, err := portfolio.ComputeMetrics(pos, res.series, res.dividends, bench.series, now)
		if err != nil {
			r.log.Warn().Err(err).Str("ticker", pos.Ticker).Msg("Excluding position, metrics failed")
			status.ExcludedTickers = append(status.ExcludedTickers, pos.Ticker)
			continue
		}
		metrics = append(metrics, *m)
	}

	snap, err := portfolio.BuildSnapshot(runID, now, metrics)
	if err != nil {
		return err
	}
	status.SnapshotDate = snap.Date.Format("2006-01-02")
	status.PositionCount = snap.Summary.PositionCount

	// A store outage must not masquerade as a first run.
	prev, err := r.store.GetLatestSnapshot()
	if err != nil {
		return fmt.Errorf("failed to read latest snapshot: %w", err)
	}
	firstRun := prev == nil
	status.FirstRun = firstRun

	if n, err := r.store.CountSnapshotsOnDate(snap.Date); err != nil {
		r.log.Warn().Err(err).Msg("Failed to check for same-day snapshots")
	} else if n > 0 {
		r.log.Warn().Int("existing", n).Str("date", status.SnapshotDate).Msg("Snapshot already recorded for this date, appending another")
	}

	if err := r.store.AppendSnapshot(snap); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	r.log.Info().
		Int64("snapshot_id", snap.ID).
		Str("date", status.SnapshotDate).
		Str("total_value", snap.Summary.TotalValue.StringFixed(2)).
		Bool("first_run", firstRun).
		Msg("Snapshot recorded")

	change := portfolio.ComputeDelta(snap, prev)
	if change != nil {
		if err := r.store.AppendDailyChange(change); err != nil {
			return fmt.Errorf("failed to append daily change: %w", err)
		}
		r.log.Info().
			Str("value_change", change.ValueChange.StringFixed(2)).
			Int("days_between", change.DaysBetween).
			Msg("Daily change recorded")
	}

	if err := r.store.AppendPositionHistory(snap.Date, snap.Positions); err != nil {
		return fmt.Errorf("failed to append position history: %w", err)
	}

	payload := report.Assemble(snap, change, now.Weekday(), r.buildAttachments(snap))

	if r.producer != nil {
		if err := r.producer.PublishSnapshotRecorded(ctx, snap, firstRun); err != nil {
			r.log.Warn().Err(err).Msg("Failed to publish snapshot event")
		}
	}

	if err := r.sender.Send(ctx, payload); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	r.log.Info().Str("subject", payload.Subject).Int("attachments", len(payload.Attachments)).Msg("Report sent")

	if r.producer != nil {
		if err := r.producer.PublishReportSent(ctx, snap, firstRun); err != nil {
			r.log.Warn().Err(err).Msg("Failed to publish report event")
		}
	}

	return nil
}

type fetchResult struct {
	series    marketdata.Series
	dividends []marketdata.Dividend
	err       error
}

// fetchAll retrieves price history for every symbol with bounded
// concurrency. Each goroutine writes only its own slot, and one symbol's
// failure never affects another's result.
func (r *Runner) fetchAll(ctx context.Context, symbols []string, start, end time.Time) map[string]fetchResult {
	maxConcurrent := r.cfg.Market.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	results := make([]fetchResult, len(symbols))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			series, dividends, err := r.market.FetchHistory(ctx, symbol, start, end)
			results[i] = fetchResult{series: series, dividends: dividends, err: err}
		}(i, symbol)
	}
	wg.Wait()

	out := make(map[string]fetchResult, len(symbols))
	for i, symbol := range symbols {
		out[symbol] = results[i]
	}
	return out
}

// buildAttachments renders the CSV dashboard and charts. The report goes
// out even when a chart cannot be rendered; a missing attachment is a
// warning, not a failure.
func (r *Runner) buildAttachments(snap *models.Snapshot) []report.Attachment {
	attachments := []report.Attachment{{
		Filename:    "portfolio_report.csv",
		ContentType: "text/csv",
		Data:        report.WriteDashboardCSV(snap),
	}}

	if png, err := charts.RenderPerformanceChart(snap.Positions); err != nil {
		r.log.Warn().Err(err).Msg("Skipping performance chart")
	} else {
		attachments = append(attachments, report.Attachment{
			Filename:    "portfolio_performance.png",
			ContentType: "image/png",
			Data:        png,
		})
	}

	points, err := r.store.ListTrendPoints(r.cfg.Report.TrendDays)
	if err != nil {
		r.log.Warn().Err(err).Msg("Skipping trend chart, history query failed")
		return attachments
	}
	if len(points) < 2 {
		r.log.Debug().Int("points", len(points)).Msg("Skipping trend chart, not enough history yet")
		return attachments
	}
	png, err := charts.RenderTrendChart(points, r.cfg.Report.TrendDays)
	if err != nil {
		r.log.Warn().Err(err).Msg("Skipping trend chart")
		return attachments
	}
	return append(attachments, report.Attachment{
		Filename:    "portfolio_trends.png",
		ContentType: "image/png",
		Data:        png,
	})
}

func (r *Runner) setLast(status *models.RunStatus) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.last = status
}

// fetchSymbols returns the distinct tickers to fetch, benchmark included.
func fetchSymbols(held []models.Position, benchmark string) []string {
	symbols := make([]string, 0, len(held)+1)
	seen := make(map[string]bool, len(held)+1)
	for _, p := range held {
		if seen[p.Ticker] {
			continue
		}
		seen[p.Ticker] = true
		symbols = append(symbols, p.Ticker)
	}
	if benchmark != "" && !seen[benchmark] {
		symbols = append(symbols, benchmark)
	}
	return symbols
}

func fetchWindowStart(held []models.Position) time.Time {
	earliest := held[0].PurchaseDate
	for _, p := range held[1:] {
		if p.PurchaseDate.Before(earliest) {
			earliest = p.PurchaseDate
		}
	}
	return marketdata.DayOf(earliest).AddDate(0, 0, -fetchStartBufferDays)
}
