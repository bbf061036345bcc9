package alerting

import (
	"context"
	"fmt"
	"math"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// NoiseConfig holds noise-gate thresholds.
type NoiseConfig struct {
	MinMarketLiquidity float64 // USD floor, trailing-volume proxy
	MaxPriceJump       float64 // max price move attributable to one trade
	OversizeMultiplier float64 // trade size vs trailing average that marks the mover
	HFTThreshold       int     // trades per 24h that mark a market maker
	WindowHours        int     // trailing window for liquidity and price context
}

// DefaultNoiseConfig returns the production thresholds.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		MinMarketLiquidity: 10000,
		MaxPriceJump:       0.20,
		OversizeMultiplier: 5,
		HFTThreshold:       50,
		WindowHours:        24,
	}
}

// NoiseGate filters candidate alerts that are more plausibly market
// noise than informed trading: illiquid markets, one oversized trade
// moving the price by itself, and high-frequency traders.
type NoiseGate struct {
	cfg    NoiseConfig
	trades storage.TradeStore
}

// NewNoiseGate creates a noise gate over the trade store.
func NewNoiseGate(cfg NoiseConfig, trades storage.TradeStore) *NoiseGate {
	return &NoiseGate{cfg: cfg, trades: trades}
}

// Check runs all noise checks. Returns ok=false with a human-readable
// reason on the first failing check.
func (g *NoiseGate) Check(ctx context.Context, t *domain.Trade) (bool, string, error) {
	since := t.Timestamp - int64(g.cfg.WindowHours)*3600

	// Trailing volume stands in for liquidity; the feed does not carry
	// an order-book depth field.
	liquidity, err := g.trades.SumSizeUSD(ctx, t.MarketID, since)
	if err != nil {
		return false, "", fmt.Errorf("liquidity check: %w", err)
	}
	if liquidity < g.cfg.MinMarketLiquidity {
		return false, fmt.Sprintf("market liquidity too low: $%.0f < $%.0f", liquidity, g.cfg.MinMarketLiquidity), nil
	}

	recent, err := g.trades.RecentByMarket(ctx, t.MarketID, since)
	if err != nil {
		return false, "", fmt.Errorf("price jump check: %w", err)
	}
	if ok, reason := g.checkPriceJump(t, recent); !ok {
		return false, reason, nil
	}

	count, err := g.trades.CountByWallet(ctx, t.Wallet, t.Timestamp-86400)
	if err != nil {
		return false, "", fmt.Errorf("trade frequency check: %w", err)
	}
	if count >= g.cfg.HFTThreshold {
		return false, fmt.Sprintf("high-frequency trader: %d trades in last 24h", count), nil
	}

	return true, "", nil
}

// checkPriceJump flags a price far from the trailing average when the
// current trade is also far oversized, i.e. the jump has no support
// from surrounding trades. Fewer than two context trades passes.
func (g *NoiseGate) checkPriceJump(t *domain.Trade, recent []*domain.Trade) (bool, string) {
	if len(recent) < 2 {
		return true, ""
	}

	var priceSum, sizeSum float64
	for _, r := range recent {
		priceSum += r.Price
		sizeSum += r.SizeUSD
	}
	avgPrice := priceSum / float64(len(recent))
	avgSize := sizeSum / float64(len(recent))

	jump := math.Abs(t.Price - avgPrice)
	if jump > g.cfg.MaxPriceJump && t.SizeUSD > avgSize*g.cfg.OversizeMultiplier {
		return false, fmt.Sprintf("price jumped %.1f%% on single large trade ($%.0f)", jump*100, t.SizeUSD)
	}
	return true, ""
}
