// Package signals evaluates the per-trade heuristic signals that feed
// the alert decision.
package signals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/graph"
	"github.com/Solmidey/polymarket-insider/internal/positions"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// Signal names, in evaluation order.
const (
	SignalFreshWalletBigBet    = "FRESH_WALLET_BIG_BET"
	SignalSizeAnomaly          = "SIZE_ANOMALY"
	SignalTightSensitiveMarket = "TIGHT_SENSITIVE_MARKET"
	SignalTemporalClustering   = "TEMPORAL_CLUSTERING"
	SignalSharedFundingSource  = "SHARED_FUNDING_SOURCE"
	SignalEarlyExitPattern     = "EARLY_EXIT_PATTERN"
)

// Config holds signal thresholds.
type Config struct {
	FreshWalletMaxAgeDays int
	BigBetUSD             float64
	SizeAnomalyMultiplier float64
	StatsWindowHours      int // trailing window for market size statistics
	TightPriceLow         float64
	TightPriceHigh        float64
	SensitiveCategories   []string
	ClusterWindowMinutes  int
	ClusterMinWallets     int
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		FreshWalletMaxAgeDays: 7,
		BigBetUSD:             5000,
		SizeAnomalyMultiplier: 3,
		StatsWindowHours:      24,
		TightPriceLow:         0.15,
		TightPriceHigh:        0.85,
		SensitiveCategories:   []string{"POLITICS", "WAR", "GEOPOLITICS"},
		ClusterWindowMinutes:  120,
		ClusterMinWallets:     3,
	}
}

// Engine evaluates the fixed signal set against a trade plus contextual
// statistics. All context is read from storage per call; given
// identical storage state and trade, the output is identical.
type Engine struct {
	cfg      Config
	wallets  storage.WalletStore
	trades   storage.TradeStore
	graph    *graph.Graph
	tracker  *positions.Tracker
	category map[string]struct{}
}

// NewEngine creates a signal engine.
func NewEngine(cfg Config, wallets storage.WalletStore, trades storage.TradeStore, g *graph.Graph, tracker *positions.Tracker) *Engine {
	category := make(map[string]struct{}, len(cfg.SensitiveCategories))
	for _, c := range cfg.SensitiveCategories {
		category[strings.ToUpper(c)] = struct{}{}
	}
	return &Engine{
		cfg:      cfg,
		wallets:  wallets,
		trades:   trades,
		graph:    g,
		tracker:  tracker,
		category: category,
	}
}

// Evaluate returns the ordered list of signal names that fired for the
// trade. An empty list is a valid result. The trade itself must not yet
// be in the trade store, so trailing statistics describe the market
// before this trade.
func (e *Engine) Evaluate(ctx context.Context, t *domain.Trade) ([]string, error) {
	var fired []string

	fresh, err := e.freshWalletBigBet(ctx, t)
	if err != nil {
		return nil, err
	}
	if fresh {
		fired = append(fired, SignalFreshWalletBigBet)
	}

	anomaly, err := e.sizeAnomaly(ctx, t)
	if err != nil {
		return nil, err
	}
	if anomaly {
		fired = append(fired, SignalSizeAnomaly)
	}

	if e.tightSensitiveMarket(t) {
		fired = append(fired, SignalTightSensitiveMarket)
	}

	recentWallets, err := e.recentWallets(ctx, t)
	if err != nil {
		return nil, err
	}

	if len(recentWallets) >= e.cfg.ClusterMinWallets {
		fired = append(fired, SignalTemporalClustering)
	}

	sharedFunding, err := e.sharedFundingSource(ctx, t, recentWallets)
	if err != nil {
		return nil, err
	}
	if sharedFunding {
		fired = append(fired, SignalSharedFundingSource)
	}

	earlyExit, err := e.tracker.EarlyExitPattern(ctx, t.Wallet, t.MarketID)
	if err != nil {
		return nil, fmt.Errorf("early exit signal: %w", err)
	}
	if earlyExit {
		fired = append(fired, SignalEarlyExitPattern)
	}

	return fired, nil
}

// freshWalletBigBet fires when the wallet is younger than the freshness
// window (an unseen wallet counts as fresh) and the trade clears the
// large-bet threshold.
func (e *Engine) freshWalletBigBet(ctx context.Context, t *domain.Trade) (bool, error) {
	if t.SizeUSD < e.cfg.BigBetUSD {
		return false, nil
	}

	w, err := e.wallets.GetByAddress(ctx, t.Wallet)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("fresh wallet signal: %w", err)
	}

	maxAge := int64(e.cfg.FreshWalletMaxAgeDays) * 24 * 3600
	return t.Timestamp-w.FirstSeen < maxAge, nil
}

// sizeAnomaly fires when the trade is at least the configured multiple
// of the market's trailing average size. Unknown or zero average means
// no signal.
func (e *Engine) sizeAnomaly(ctx context.Context, t *domain.Trade) (bool, error) {
	since := t.Timestamp - int64(e.cfg.StatsWindowHours)*3600
	avg, n, err := e.trades.AvgSizeUSD(ctx, t.MarketID, since)
	if err != nil {
		return false, fmt.Errorf("size anomaly signal: %w", err)
	}
	if n == 0 || avg <= 0 {
		return false, nil
	}
	return t.SizeUSD >= avg*e.cfg.SizeAnomalyMultiplier, nil
}

// tightSensitiveMarket fires for prices outside the configured band on
// a sensitive category.
func (e *Engine) tightSensitiveMarket(t *domain.Trade) bool {
	if t.Price >= e.cfg.TightPriceLow && t.Price <= e.cfg.TightPriceHigh {
		return false
	}
	_, sensitive := e.category[strings.ToUpper(t.Category)]
	return sensitive
}

// recentWallets returns distinct wallets other than the trader that hit
// the same market outcome within the trailing cluster window.
func (e *Engine) recentWallets(ctx context.Context, t *domain.Trade) ([]string, error) {
	since := t.Timestamp - int64(e.cfg.ClusterWindowMinutes)*60
	wallets, err := e.trades.DistinctWallets(ctx, t.MarketID, t.Outcome, since)
	if err != nil {
		return nil, fmt.Errorf("temporal clustering signal: %w", err)
	}

	others := wallets[:0]
	for _, w := range wallets {
		if w != t.Wallet {
			others = append(others, w)
		}
	}
	return others, nil
}

// sharedFundingSource fires when the trader is related to any wallet
// active in the same window.
func (e *Engine) sharedFundingSource(ctx context.Context, t *domain.Trade, recentWallets []string) (bool, error) {
	for _, w := range recentWallets {
		related, err := e.graph.Related(ctx, t.Wallet, w)
		if err != nil {
			return false, fmt.Errorf("shared funding signal: %w", err)
		}
		if related {
			return true, nil
		}
	}
	return false, nil
}
