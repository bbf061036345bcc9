// Package alerting decides whether a trade's fired signals become an
// alert, applying the sensitivity-derived signal threshold, a noise
// gate and duplicate suppression. Rejected candidates land in the
// filtered-alert audit log with a specific reason.
package alerting

import (
	"context"
	"fmt"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/sensitivity"
	"github.com/Solmidey/polymarket-insider/internal/signals"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// Config holds decision thresholds.
type Config struct {
	// MinConfidence is a secondary filter on the weighted signal score.
	// Zero disables it; the sensitivity signal-count gate stays primary.
	MinConfidence int

	// CooldownMinutes suppresses repeat alerts for the same
	// (wallet, market) pair.
	CooldownMinutes int
}

// DefaultConfig returns the production decision thresholds.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0,
		CooldownMinutes: 60,
	}
}

// Decision is the outcome of evaluating one candidate alert.
type Decision struct {
	Fired        bool
	FilterReason string // set when not fired by a gate; empty when no signals fired at all
	Signals      []string
	Confidence   int
	Sensitivity  sensitivity.Sensitivity
	Required     int
}

// Decider applies the alert decision rule.
type Decider struct {
	cfg      Config
	noise    *NoiseGate
	alerts   storage.AlertStore
	filtered storage.FilteredAlertStore
}

// NewDecider creates a Decider.
func NewDecider(cfg Config, noise *NoiseGate, alerts storage.AlertStore, filtered storage.FilteredAlertStore) *Decider {
	return &Decider{cfg: cfg, noise: noise, alerts: alerts, filtered: filtered}
}

// Decide evaluates the fired signal list for a trade. Gate failures are
// recorded in the audit log and never retried. Trades with no fired
// signals are dropped without an audit record.
func (d *Decider) Decide(ctx context.Context, t *domain.Trade, fired []string) (*Decision, error) {
	sens := sensitivity.Classify(t.Question, t.Category)
	dec := &Decision{
		Signals:     fired,
		Confidence:  signals.Confidence(fired),
		Sensitivity: sens,
		Required:    sensitivity.RequiredSignalCount(sens),
	}

	if len(fired) == 0 {
		return dec, nil
	}

	if len(fired) < dec.Required {
		return d.reject(ctx, t, dec, fmt.Sprintf("insufficient signals: %d fired, %d required for %s market",
			len(fired), dec.Required, sens.Level))
	}

	if d.cfg.MinConfidence > 0 && dec.Confidence < d.cfg.MinConfidence {
		return d.reject(ctx, t, dec, fmt.Sprintf("confidence too low: %d < %d", dec.Confidence, d.cfg.MinConfidence))
	}

	ok, reason, err := d.noise.Check(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("noise gate: %w", err)
	}
	if !ok {
		return d.reject(ctx, t, dec, reason)
	}

	since := t.Timestamp - int64(d.cfg.CooldownMinutes)*60
	recent, err := d.alerts.RecentlyFired(ctx, t.Wallet, t.MarketID, since)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if recent {
		return d.reject(ctx, t, dec, fmt.Sprintf("duplicate alert within %dm cooldown", d.cfg.CooldownMinutes))
	}

	dec.Fired = true
	return dec, nil
}

// reject records the gate failure in the audit log and returns the
// unfired decision.
func (d *Decider) reject(ctx context.Context, t *domain.Trade, dec *Decision, reason string) (*Decision, error) {
	dec.FilterReason = reason

	err := d.filtered.Insert(ctx, &domain.FilteredAlert{
		Wallet:    t.Wallet,
		MarketID:  t.MarketID,
		Question:  t.Question,
		Signals:   dec.Signals,
		Reason:    reason,
		Price:     t.Price,
		SizeUSD:   t.SizeUSD,
		Timestamp: t.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("record filtered alert: %w", err)
	}
	return dec, nil
}
