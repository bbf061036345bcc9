// Package engine wires the ingest, detection, alerting and attribution
// stages into the long-running service loop: poll the trade feed,
// evaluate each trade, fire alerts, and periodically score pending
// alerts against market outcomes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Solmidey/polymarket-insider/internal/alerting"
	"github.com/Solmidey/polymarket-insider/internal/attribution"
	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/idhash"
	"github.com/Solmidey/polymarket-insider/internal/notify"
	"github.com/Solmidey/polymarket-insider/internal/observability"
	"github.com/Solmidey/polymarket-insider/internal/positions"
	"github.com/Solmidey/polymarket-insider/internal/signals"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// TradeSource supplies batches of normalized trades newer than the
// cursor.
type TradeSource interface {
	RecentTrades(ctx context.Context, limit int, after int64) ([]*domain.Trade, error)
}

// TradeArchiver receives every processed trade for long-term analytics
// storage. Optional; archive failures never block the pipeline.
type TradeArchiver interface {
	InsertBulk(ctx context.Context, trades []*domain.Trade) error
}

// Options wires the runner's dependencies.
type Options struct {
	// Required stores
	Trades  storage.TradeStore
	Wallets storage.WalletStore
	Alerts  storage.AlertStore

	// Required components
	Source   TradeSource
	Signals  *signals.Engine
	Tracker  *positions.Tracker
	Decider  *alerting.Decider
	Reviewer *attribution.Reviewer

	// Optional
	Notifier notify.Notifier
	Archive  TradeArchiver
	Metrics  *observability.Metrics
	Log      *zap.Logger

	// Scheduling
	PollInterval   time.Duration
	ReviewInterval time.Duration
	BatchSize      int
}

// Runner is the service loop.
type Runner struct {
	trades  storage.TradeStore
	wallets storage.WalletStore
	alerts  storage.AlertStore

	source   TradeSource
	signals  *signals.Engine
	tracker  *positions.Tracker
	decider  *alerting.Decider
	reviewer *attribution.Reviewer
	notifier notify.Notifier
	archive  TradeArchiver
	metrics  *observability.Metrics
	log      *zap.Logger

	pollInterval   time.Duration
	reviewInterval time.Duration
	batchSize      int

	cursor int64
}

// New creates a Runner.
func New(opts Options) *Runner {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	reviewInterval := opts.ReviewInterval
	if reviewInterval <= 0 {
		reviewInterval = 5 * time.Minute
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	return &Runner{
		trades:         opts.Trades,
		wallets:        opts.Wallets,
		alerts:         opts.Alerts,
		source:         opts.Source,
		signals:        opts.Signals,
		tracker:        opts.Tracker,
		decider:        opts.Decider,
		reviewer:       opts.Reviewer,
		notifier:       opts.Notifier,
		archive:        opts.Archive,
		metrics:        metrics,
		log:            log,
		pollInterval:   pollInterval,
		reviewInterval: reviewInterval,
		batchSize:      batchSize,
	}
}

// PollStats summarizes one poll cycle.
type PollStats struct {
	Fetched     int
	Processed   int
	Duplicates  int
	AlertsFired int
	Errors      int
}

// Run executes the poll and review loops until the context is
// cancelled. Shutdown is cooperative: in-flight cycles finish.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("engine started",
		zap.Duration("poll_interval", r.pollInterval),
		zap.Duration("review_interval", r.reviewInterval),
		zap.Int("batch_size", r.batchSize))

	pollTicker := time.NewTicker(r.pollInterval)
	defer pollTicker.Stop()
	reviewTicker := time.NewTicker(r.reviewInterval)
	defer reviewTicker.Stop()

	r.pollCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("engine stopping")
			return ctx.Err()
		case <-pollTicker.C:
			r.pollCycle(ctx)
		case <-reviewTicker.C:
			r.reviewCycle(ctx)
		}
	}
}

func (r *Runner) pollCycle(ctx context.Context) {
	start := time.Now()
	stats, err := r.PollOnce(ctx)
	if err != nil {
		r.log.Error("poll cycle failed", zap.Error(err))
		r.metrics.IngestErrors.WithLabelValues("poll").Inc()
		return
	}

	r.metrics.PollDuration.Observe(time.Since(start).Seconds())
	r.metrics.LastSuccessfulPoll.SetToCurrentTime()
	r.metrics.FeedCursor.Set(float64(r.cursor))

	if stats.Fetched > 0 {
		r.log.Info("poll cycle complete",
			zap.Int("fetched", stats.Fetched),
			zap.Int("processed", stats.Processed),
			zap.Int("duplicates", stats.Duplicates),
			zap.Int("alerts_fired", stats.AlertsFired),
			zap.Int("errors", stats.Errors))
	}
}

// PollOnce fetches and processes one batch. A failure on one trade
// never blocks the rest of the batch.
func (r *Runner) PollOnce(ctx context.Context) (*PollStats, error) {
	batch, err := r.source.RecentTrades(ctx, r.batchSize, r.cursor)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}

	stats := &PollStats{Fetched: len(batch)}
	r.metrics.TradesFetched.Add(float64(len(batch)))

	for _, t := range batch {
		fired, err := r.processTrade(ctx, t)
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			stats.Duplicates++
			r.metrics.TradesDuplicate.Inc()
		case err != nil:
			stats.Errors++
			r.metrics.IngestErrors.WithLabelValues("process").Inc()
			r.log.Warn("trade processing failed",
				zap.String("trade_id", t.TradeID),
				zap.Error(err))
		default:
			stats.Processed++
			r.metrics.TradesProcessed.Inc()
			if fired {
				stats.AlertsFired++
			}
		}
		if t.Timestamp > r.cursor {
			r.cursor = t.Timestamp
		}
	}

	if r.archive != nil && len(batch) > 0 {
		if err := r.archive.InsertBulk(ctx, batch); err != nil {
			r.log.Warn("trade archive failed", zap.Error(err))
			r.metrics.IngestErrors.WithLabelValues("archive").Inc()
		}
	}
	return stats, nil
}

// processTrade runs one trade through the full pipeline. Signal
// evaluation runs before the trade is inserted, so every per-market
// statistic describes the market as it stood when the trade arrived.
func (r *Runner) processTrade(ctx context.Context, t *domain.Trade) (fired bool, err error) {
	if _, err := r.trades.GetByID(ctx, t.TradeID); err == nil {
		return false, storage.ErrDuplicateKey
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("duplicate check: %w", err)
	}

	if _, err := r.wallets.Record(ctx, t.Wallet, t.Timestamp, t.SizeUSD); err != nil {
		return false, fmt.Errorf("record wallet: %w", err)
	}

	signalsFired, err := r.signals.Evaluate(ctx, t)
	if err != nil {
		return false, fmt.Errorf("evaluate signals: %w", err)
	}
	r.metrics.TradesEvaluated.Inc()
	for _, s := range signalsFired {
		r.metrics.SignalsFired.WithLabelValues(s).Inc()
	}

	decision, err := r.decider.Decide(ctx, t, signalsFired)
	if err != nil {
		return false, fmt.Errorf("decide: %w", err)
	}

	if err := r.trades.Insert(ctx, t); err != nil {
		return false, fmt.Errorf("insert trade: %w", err)
	}

	switch t.Side {
	case domain.SideBuy:
		if _, err := r.tracker.RecordEntry(ctx, t); err != nil {
			return false, fmt.Errorf("record entry: %w", err)
		}
	case domain.SideSell:
		if _, err := r.tracker.RecordExit(ctx, t); err != nil {
			return false, fmt.Errorf("record exit: %w", err)
		}
	}

	if !decision.Fired {
		if decision.FilterReason != "" {
			r.metrics.AlertsFiltered.WithLabelValues(filterGate(decision.FilterReason)).Inc()
		}
		return false, nil
	}

	if err := r.fireAlert(ctx, t, decision); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Runner) fireAlert(ctx context.Context, t *domain.Trade, decision *alerting.Decision) error {
	alert := &domain.Alert{
		AlertID:     idhash.AlertID(t.Wallet, t.MarketID, t.Timestamp, t.TradeID),
		Wallet:      t.Wallet,
		MarketID:    t.MarketID,
		Question:    t.Question,
		Outcome:     t.Outcome,
		FiredPrice:  t.Price,
		FiredTime:   t.Timestamp,
		SizeUSD:     t.SizeUSD,
		Signals:     decision.Signals,
		SignalKey:   domain.SignalKey(decision.Signals),
		Confidence:  decision.Confidence,
		Sensitivity: decision.Sensitivity.Level,
		Status:      domain.AlertPending,
	}

	if err := r.alerts.Insert(ctx, alert); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	r.metrics.AlertsFired.Inc()

	r.log.Info("alert fired",
		zap.String("alert_id", alert.AlertID),
		zap.String("wallet", t.Wallet),
		zap.String("market", t.Question),
		zap.Strings("signals", decision.Signals),
		zap.Int("confidence", decision.Confidence),
		zap.String("sensitivity", decision.Sensitivity.Level))

	if r.notifier != nil {
		err := r.notifier.Send(ctx, notify.AlertNotification{
			Question:    t.Question,
			Outcome:     t.Outcome,
			Price:       t.Price,
			SizeUSD:     t.SizeUSD,
			Wallet:      t.Wallet,
			Signals:     decision.Signals,
			Confidence:  decision.Confidence,
			Sensitivity: decision.Sensitivity.Level,
		})
		if err != nil {
			// The alert record is durable; delivery is best effort.
			r.log.Error("alert notification failed", zap.Error(err))
		}
	}
	return nil
}

func (r *Runner) reviewCycle(ctx context.Context) {
	start := time.Now()
	stats, err := r.ReviewOnce(ctx)
	if err != nil {
		r.log.Error("review cycle failed", zap.Error(err))
		return
	}

	r.metrics.ReviewDuration.Observe(time.Since(start).Seconds())
	r.metrics.LastSuccessfulReview.SetToCurrentTime()

	if stats.Checked > 0 {
		r.log.Info("review cycle complete",
			zap.Int("checked", stats.Checked),
			zap.Int("peak_updates", stats.PeakUpdates),
			zap.Int("resolved", stats.Resolved),
			zap.Int("errors", stats.Errors))
	}
}

// ReviewOnce runs one attribution pass over pending alerts.
func (r *Runner) ReviewOnce(ctx context.Context) (*attribution.ReviewStats, error) {
	stats, err := r.reviewer.Review(ctx)
	if err != nil {
		return nil, err
	}

	r.metrics.AlertsResolved.Add(float64(stats.Resolved))
	r.metrics.PeakUpdates.Add(float64(stats.PeakUpdates))
	r.metrics.PendingAlerts.Set(float64(stats.Checked - stats.Resolved))
	return stats, nil
}

// Ingest pushes one trade through the pipeline, for realtime sources
// that bypass the polling loop. The cursor is untouched; the duplicate
// check absorbs any overlap with polled batches.
func (r *Runner) Ingest(ctx context.Context, t *domain.Trade) error {
	fired, err := r.processTrade(ctx, t)
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		r.metrics.TradesDuplicate.Inc()
		return nil
	case err != nil:
		r.metrics.IngestErrors.WithLabelValues("process").Inc()
		return err
	}
	r.metrics.TradesProcessed.Inc()
	if fired {
		r.log.Debug("realtime trade fired alert", zap.String("trade_id", t.TradeID))
	}
	return nil
}

// Cursor exposes the current polling cursor.
func (r *Runner) Cursor() int64 {
	return r.cursor
}

// filterGate collapses a formatted gate-failure reason into a
// low-cardinality metric label.
func filterGate(reason string) string {
	switch {
	case strings.HasPrefix(reason, "insufficient signals"):
		return "signal_count"
	case strings.HasPrefix(reason, "confidence too low"):
		return "confidence"
	case strings.HasPrefix(reason, "market liquidity"):
		return "liquidity"
	case strings.HasPrefix(reason, "price jumped"):
		return "price_jump"
	case strings.HasPrefix(reason, "high-frequency"):
		return "hft"
	case strings.HasPrefix(reason, "duplicate alert"):
		return "dedup"
	default:
		return "other"
	}
}
