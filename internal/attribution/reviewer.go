// Package attribution scores fired alerts against what the market did
// afterwards. Pending alerts get monotonic peak-price tracking until
// their market resolves, at which point a single terminal resolution
// write records price change, profit and correctness. Resolved alerts
// aggregate into per-signal-combination performance.
package attribution

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

const (
	// notionalUSD is the fixed YES-side stake assumed when converting a
	// price change into profit.
	notionalUSD = 100.0

	// correctPeakMove marks an alert correct even on a losing resolution
	// when the price moved this far from the fired price at its peak.
	correctPeakMove = 0.15
)

// MarketState is the view of a market the reviewer needs: the current
// outcome price while the market trades, and the resolution record once
// it settles.
type MarketState struct {
	Price           float64
	AsOf            int64 // observation time of Price
	Resolved        bool
	ResolvedOutcome string
	ResolutionPrice float64
	ResolutionTime  int64
}

// MarketSource supplies market state for an alert's market and outcome.
type MarketSource interface {
	State(ctx context.Context, marketID, outcome string) (*MarketState, error)
}

// ReviewStats summarizes one review pass.
type ReviewStats struct {
	Checked     int
	PeakUpdates int
	Resolved    int
	Errors      int
}

// Reviewer walks pending alerts each tick, updating peaks and applying
// resolutions.
type Reviewer struct {
	alerts storage.AlertStore
	events storage.MarketEventStore
	source MarketSource
	log    *zap.Logger
}

// NewReviewer creates a Reviewer. A nil logger disables logging.
func NewReviewer(alerts storage.AlertStore, events storage.MarketEventStore, source MarketSource, log *zap.Logger) *Reviewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reviewer{alerts: alerts, events: events, source: source, log: log}
}

// Review checks every pending alert against its market. Failures on one
// alert never block the rest; they are counted and logged.
func (r *Reviewer) Review(ctx context.Context) (*ReviewStats, error) {
	pending, err := r.alerts.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending alerts: %w", err)
	}

	stats := &ReviewStats{}
	for _, a := range pending {
		stats.Checked++
		if err := r.reviewAlert(ctx, a, stats); err != nil {
			stats.Errors++
			r.log.Warn("alert review failed",
				zap.String("alert_id", a.AlertID),
				zap.String("market_id", a.MarketID),
				zap.Error(err))
		}
	}
	return stats, nil
}

func (r *Reviewer) reviewAlert(ctx context.Context, a *domain.Alert, stats *ReviewStats) error {
	state, err := r.source.State(ctx, a.MarketID, a.Outcome)
	if err != nil {
		return fmt.Errorf("market state: %w", err)
	}

	if !state.Resolved {
		updated, err := r.trackPeak(ctx, a, state)
		if err != nil {
			return err
		}
		if updated {
			stats.PeakUpdates++
		}
		return nil
	}

	if state.ResolvedOutcome == "" || state.ResolvedOutcome == "UNKNOWN" {
		// Closed market without a winning outcome yet; leave the alert
		// pending until the resolution is unambiguous.
		r.log.Debug("resolution outcome unknown, alert stays pending",
			zap.String("alert_id", a.AlertID),
			zap.String("market_id", a.MarketID))
		return nil
	}

	if err := r.resolve(ctx, a, state); err != nil {
		return err
	}
	stats.Resolved++
	return nil
}

// trackPeak advances the alert's peak to the current price when it
// exceeds the stored peak. The first observation always sets the peak;
// after that it never decreases.
func (r *Reviewer) trackPeak(ctx context.Context, a *domain.Alert, state *MarketState) (bool, error) {
	if a.PeakPrice != nil && state.Price <= *a.PeakPrice {
		return false, nil
	}

	err := r.alerts.UpdatePeak(ctx, a.AlertID, state.Price, state.AsOf)
	if err != nil {
		return false, fmt.Errorf("update peak: %w", err)
	}
	return true, nil
}

// resolve writes the terminal resolution. A concurrent resolver winning
// the race is not an error.
func (r *Reviewer) resolve(ctx context.Context, a *domain.Alert, state *MarketState) error {
	priceChange := state.ResolutionPrice - a.FiredPrice

	var peakChange float64
	if a.PeakPrice != nil {
		peakChange = *a.PeakPrice - a.FiredPrice
	}

	profit := priceChange * notionalUSD
	res := domain.AlertResolution{
		Outcome:         state.ResolvedOutcome,
		ResolvedTime:    state.ResolutionTime,
		HoursToOutcome:  float64(state.ResolutionTime-a.FiredTime) / 3600,
		PriceChange:     priceChange,
		PeakPriceChange: peakChange,
		ProfitLoss:      profit,
		IsCorrect:       profit > 0 || math.Abs(peakChange) > correctPeakMove,
	}

	if err := r.alerts.Resolve(ctx, a.AlertID, res); err != nil {
		if errors.Is(err, storage.ErrAlreadyResolved) {
			return nil
		}
		return fmt.Errorf("resolve alert: %w", err)
	}

	err := r.events.Upsert(ctx, &domain.MarketEvent{
		MarketID:        a.MarketID,
		Question:        a.Question,
		EventType:       "resolution",
		Resolved:        true,
		ResolvedOutcome: state.ResolvedOutcome,
		ResolutionPrice: state.ResolutionPrice,
		ResolutionTime:  state.ResolutionTime,
	})
	if err != nil {
		return fmt.Errorf("record market event: %w", err)
	}

	r.log.Info("alert resolved",
		zap.String("alert_id", a.AlertID),
		zap.String("market_id", a.MarketID),
		zap.Float64("profit_loss", profit),
		zap.Bool("is_correct", res.IsCorrect))
	return nil
}
